package timeline

import "time"

// BeatID identifies a beat row. Identity 0 is reserved for the sentinel.
type BeatID int64

// SentinelBeatID is the reserved identity of the fixed first beat.
const SentinelBeatID BeatID = 0

// IsSentinel reports whether the identity is the reserved sentinel beat.
func (id BeatID) IsSentinel() bool {
	return id == SentinelBeatID
}

// MeasureID identifies a measure row.
type MeasureID int64

// Beat is one atomic timeline unit.
//
// Position defines the total order among beats and is mutated only by the
// reindexing operations (shift, flatten), never by a field update. Duration
// is the time in seconds between this beat and the previous one.
type Beat struct {
	ID               BeatID
	Position         int
	Duration         float64
	IncludeInMeasure bool
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsSentinel reports whether this beat is the fixed first beat.
func (b Beat) IsSentinel() bool {
	return b.ID.IsSentinel()
}

// NewBeat is the input bundle for beat creation. Identity, position, and
// timestamps are assigned by the engine and storage.
type NewBeat struct {
	Duration         float64
	IncludeInMeasure bool
	Notes            *string
}

// BeatUpdate is a partial update for one beat, keyed by identity.
//
// Nil pointer fields are left unchanged. Notes is nullable in storage, so
// clearing it is a distinct state from leaving it alone: set ClearNotes to
// write NULL. When both Notes and ClearNotes are set, ClearNotes wins.
type BeatUpdate struct {
	ID               BeatID
	Duration         *float64
	IncludeInMeasure *bool
	Notes            *string
	ClearNotes       bool
}

// Measure groups consecutive beats, anchored by a non-owning identity
// reference to its starting beat.
type Measure struct {
	ID            MeasureID
	StartBeat     BeatID
	RehearsalMark *string
	Notes         *string
	IsGhost       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMeasure is the input bundle for measure creation. The referenced start
// beat must exist at creation time.
type NewMeasure struct {
	StartBeat     BeatID
	RehearsalMark *string
	Notes         *string
	IsGhost       bool
}

// MeasureUpdate is a partial update for one measure, keyed by identity.
// Nil pointer fields are left unchanged; the Clear flags write NULL.
type MeasureUpdate struct {
	ID                 MeasureID
	StartBeat          *BeatID
	RehearsalMark      *string
	ClearRehearsalMark bool
	Notes              *string
	ClearNotes         bool
	IsGhost            *bool
}
