package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/cadence/internal/timeline"
)

// RenderTimeline writes a deterministic text view of the timeline: one
// row per beat in position order, with measure starts annotated inline.
// Timestamps are deliberately omitted so output is stable across runs.
func RenderTimeline(w io.Writer, beats []timeline.Beat, measures []timeline.Measure) error {
	starts := make(map[timeline.BeatID][]timeline.Measure)
	for _, m := range measures {
		starts[m.StartBeat] = append(starts[m.StartBeat], m)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tID\tDUR\tIN MEASURE\tMEASURE\tNOTES")
	for _, b := range beats {
		id := fmt.Sprintf("%d", b.ID)
		if b.IsSentinel() {
			id = "0*"
		}
		notes := ""
		if b.Notes != nil {
			notes = *b.Notes
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			b.Position, id, formatDuration(b.Duration),
			formatBool(b.IncludeInMeasure), formatMeasureMarks(starts[b.ID]), notes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Strip the tabwriter's trailing padding so output is stable.
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n%d beats, %d measures\n", countNonSentinel(beats), len(measures))
	return nil
}

func formatDuration(d float64) string {
	s := fmt.Sprintf("%.4f", d)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// formatMeasureMarks renders the measures starting on one beat, e.g.
// "|m3" or "|m7(A)" for a rehearsal mark, "|m9?" for a ghost.
func formatMeasureMarks(ms []timeline.Measure) string {
	if len(ms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ms))
	for _, m := range ms {
		mark := fmt.Sprintf("|m%d", m.ID)
		if m.RehearsalMark != nil {
			mark += "(" + *m.RehearsalMark + ")"
		}
		if m.IsGhost {
			mark += "?"
		}
		parts = append(parts, mark)
	}
	return strings.Join(parts, " ")
}

func countNonSentinel(beats []timeline.Beat) int {
	n := 0
	for _, b := range beats {
		if !b.IsSentinel() {
			n++
		}
	}
	return n
}
