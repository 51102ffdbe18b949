package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/cadence/internal/engine"
	"github.com/roach88/cadence/internal/testutil"
	"github.com/roach88/cadence/internal/timeline"
)

// Result is the outcome of a scenario execution: the final timeline plus
// the history ledger, captured after all steps ran.
type Result struct {
	Beats      []timeline.Beat
	Measures   []timeline.Measure
	History    []string // entry labels in sequence order
	Rejections int      // steps that failed validation as expected
}

// Run executes a scenario against a fresh database and returns the final
// state. Each scenario gets its own database for isolation.
//
// Steps marked expect_rejected must fail with a validation error; the
// harness additionally verifies the rejection was atomic by comparing
// positions and history length around the step.
func Run(scenario *Scenario) (*Result, error) {
	eng, cleanup, err := testutil.NewTempEngine()
	if err != nil {
		return nil, fmt.Errorf("opening scenario database: %w", err)
	}
	defer cleanup()

	ctx := context.Background()
	result := &Result{}

	for i, step := range scenario.Steps {
		if step.ExpectRejected {
			if err := runRejectedStep(ctx, eng, step); err != nil {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
			}
			result.Rejections++
			continue
		}
		if err := runStep(ctx, eng, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
		}
	}

	if err := capture(ctx, eng, result); err != nil {
		return nil, err
	}

	for i, a := range scenario.Assertions {
		if err := assertResult(result, a); err != nil {
			return nil, fmt.Errorf("assertion %d: %w", i+1, err)
		}
	}

	slog.Debug("scenario complete",
		"name", scenario.Name,
		"steps", len(scenario.Steps),
		"rejections", result.Rejections,
	)
	return result, nil
}

// runStep dispatches one operation to the engine.
func runStep(ctx context.Context, eng *engine.Engine, step Step) error {
	switch step.Op {
	case "add_beats":
		count := step.Count
		if count == 0 {
			count = 1
		}
		duration := 0.5
		if step.Duration != nil {
			duration = *step.Duration
		}
		newBeats := make([]timeline.NewBeat, count)
		for i := range newBeats {
			nb := timeline.NewBeat{Duration: duration, IncludeInMeasure: true}
			if step.Notes != "" {
				notes := step.Notes
				nb.Notes = &notes
			}
			newBeats[i] = nb
		}
		_, err := eng.CreateBeats(ctx, newBeats, step.At)
		return err

	case "remove_beats":
		_, err := eng.DeleteBeats(ctx, beatIDs(step.IDs))
		return err

	case "update_all_durations":
		duration := 0.0
		if step.Duration != nil {
			duration = *step.Duration
		}
		_, err := eng.UpdateAllBeatDurations(ctx, duration)
		return err

	case "shift":
		at := 0
		if step.At != nil {
			at = *step.At
		}
		_, err := eng.ShiftBeats(ctx, at, step.By)
		return err

	case "flatten":
		_, err := eng.FlattenOrder(ctx)
		return err

	case "add_measure":
		nm := timeline.NewMeasure{
			StartBeat: timeline.BeatID(step.StartBeat),
			IsGhost:   step.Ghost,
		}
		if step.Mark != "" {
			mark := step.Mark
			nm.RehearsalMark = &mark
		}
		_, err := eng.CreateMeasures(ctx, []timeline.NewMeasure{nm})
		return err

	case "remove_measures":
		ids := make([]timeline.MeasureID, 0, len(step.IDs))
		for _, id := range step.IDs {
			ids = append(ids, timeline.MeasureID(id))
		}
		_, err := eng.DeleteMeasures(ctx, ids)
		return err

	case "ensure_ghost":
		_, _, err := eng.EnsureTrailingGhost(ctx)
		return err

	case "tempo_group":
		_, err := eng.MaterializeTempoGroup(ctx, timeline.TempoGroup{
			Tempo:              step.Tempo,
			BigBeatsPerMeasure: step.BeatsPerMeasure,
			NumOfRepeats:       step.Repeats,
		}, step.At)
		return err

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// runRejectedStep runs a step that must fail validation and verifies the
// rejection persisted nothing.
func runRejectedStep(ctx context.Context, eng *engine.Engine, step Step) error {
	beforePositions, beforeHistory, err := snapshot(ctx, eng)
	if err != nil {
		return err
	}

	stepErr := runStep(ctx, eng, step)
	if stepErr == nil {
		return fmt.Errorf("expected rejection, step succeeded")
	}
	if !engine.IsValidationError(stepErr) {
		return fmt.Errorf("expected validation rejection, got: %w", stepErr)
	}

	afterPositions, afterHistory, err := snapshot(ctx, eng)
	if err != nil {
		return err
	}
	if !equalInts(beforePositions, afterPositions) {
		return fmt.Errorf("rejected step changed positions: %v -> %v", beforePositions, afterPositions)
	}
	if beforeHistory != afterHistory {
		return fmt.Errorf("rejected step recorded history: %d -> %d entries", beforeHistory, afterHistory)
	}
	return nil
}

func snapshot(ctx context.Context, eng *engine.Engine) ([]int, int, error) {
	beats, err := eng.Beats(ctx)
	if err != nil {
		return nil, 0, err
	}
	positions := make([]int, len(beats))
	for i, b := range beats {
		positions[i] = b.Position
	}
	n, err := eng.History().Len(ctx)
	if err != nil {
		return nil, 0, err
	}
	return positions, n, nil
}

func capture(ctx context.Context, eng *engine.Engine, result *Result) error {
	var err error
	result.Beats, err = eng.Beats(ctx)
	if err != nil {
		return err
	}
	result.Measures, err = eng.Measures(ctx)
	if err != nil {
		return err
	}
	entries, err := eng.History().Entries(ctx)
	if err != nil {
		return err
	}
	result.History = make([]string, 0, len(entries))
	for _, e := range entries {
		result.History = append(result.History, e.Label)
	}
	return nil
}

func beatIDs(ids []int64) []timeline.BeatID {
	out := make([]timeline.BeatID, 0, len(ids))
	for _, id := range ids {
		out = append(out, timeline.BeatID(id))
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
