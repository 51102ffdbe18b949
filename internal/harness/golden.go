package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the canonical JSON view of a scenario's final timeline.
// Timestamps and entry tokens are deliberately excluded so snapshots are
// byte-identical across runs.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Beats        []BeatSnapshot    `json:"beats"`
	Measures     []MeasureSnapshot `json:"measures"`
	History      []string          `json:"history"`
}

// BeatSnapshot is one beat in position order.
type BeatSnapshot struct {
	ID               int64   `json:"id"`
	Position         int     `json:"position"`
	Duration         float64 `json:"duration"`
	IncludeInMeasure bool    `json:"include_in_measure"`
	Notes            *string `json:"notes,omitempty"`
}

// MeasureSnapshot is one measure in timeline order.
type MeasureSnapshot struct {
	ID            int64   `json:"id"`
	StartBeat     int64   `json:"start_beat"`
	RehearsalMark *string `json:"rehearsal_mark,omitempty"`
	IsGhost       bool    `json:"is_ghost"`
}

// RunWithGolden executes a scenario and compares the final timeline
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		ScenarioName: scenario.Name,
		Beats:        make([]BeatSnapshot, 0, len(result.Beats)),
		Measures:     make([]MeasureSnapshot, 0, len(result.Measures)),
		History:      result.History,
	}
	for _, b := range result.Beats {
		snapshot.Beats = append(snapshot.Beats, BeatSnapshot{
			ID:               int64(b.ID),
			Position:         b.Position,
			Duration:         b.Duration,
			IncludeInMeasure: b.IncludeInMeasure,
			Notes:            b.Notes,
		})
	}
	for _, m := range result.Measures {
		snapshot.Measures = append(snapshot.Measures, MeasureSnapshot{
			ID:            int64(m.ID),
			StartBeat:     int64(m.StartBeat),
			RehearsalMark: m.RehearsalMark,
			IsGhost:       m.IsGhost,
		})
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
