package timeline

import "fmt"

// TempoGroup describes a contiguous block of uniform-duration beats and the
// measures delimiting it. Materializing a group inserts
// BigBeatsPerMeasure*NumOfRepeats beats and NumOfRepeats measures.
type TempoGroup struct {
	// Tempo in beats per minute. Each generated beat lasts 60/Tempo seconds.
	Tempo float64

	// BigBeatsPerMeasure is the number of beats forming one measure.
	BigBeatsPerMeasure int

	// NumOfRepeats is the number of measures to generate.
	NumOfRepeats int
}

// BeatDuration returns the duration in seconds of each generated beat.
// The value is computed once per group and applied identically to every
// beat in the block.
func (g TempoGroup) BeatDuration() float64 {
	return 60 / g.Tempo
}

// TotalBeats returns the number of beats the group materializes into.
func (g TempoGroup) TotalBeats() int {
	return g.BigBeatsPerMeasure * g.NumOfRepeats
}

// Validate checks the group bounds before any storage work happens.
func (g TempoGroup) Validate() error {
	if g.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", g.Tempo)
	}
	if g.BigBeatsPerMeasure < 1 {
		return fmt.Errorf("beats per measure must be at least 1, got %d", g.BigBeatsPerMeasure)
	}
	if g.NumOfRepeats < 1 {
		return fmt.Errorf("repeat count must be at least 1, got %d", g.NumOfRepeats)
	}
	return nil
}
