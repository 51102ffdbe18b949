package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/cadence/internal/timeline"
)

// MaterializedGroup is the result of inserting one tempo group: the created
// beats in position order and the created measures in timeline order.
type MaterializedGroup struct {
	Beats    []timeline.Beat
	Measures []timeline.Measure
}

// MaterializeTempoGroup inserts a contiguous block of uniform-duration
// beats and the measures delimiting it, as a single atomic unit.
//
// The block goes in at startingPosition, or appends at the end when nil.
// Inserting before existing beats first shifts everything at or after the
// insertion point forward by the block size; measure anchors follow
// implicitly because their ordering is derived from beat identity, never
// stored. A trailing ghost measure is left in place - relocating it
// afterwards is the caller's call (see EnsureTrailingGhost).
//
// Shift, beat creation, and measure creation run inside one transaction;
// any failure rolls back the whole block and success records exactly one
// history entry.
func (e *Engine) MaterializeTempoGroup(ctx context.Context, g timeline.TempoGroup, startingPosition *int) (MaterializedGroup, error) {
	if err := g.Validate(); err != nil {
		return MaterializedGroup{}, &ValidationError{
			Code:    ErrCodeInvalidTempoGroup,
			Message: err.Error(),
		}
	}
	if startingPosition != nil && *startingPosition < 1 {
		return MaterializedGroup{}, &ValidationError{
			Code:    ErrCodeInvalidPosition,
			Message: fmt.Sprintf("tempo group insertion position must be at least 1, got %d", *startingPosition),
		}
	}

	var result MaterializedGroup
	err := e.ledger.RunAsOneEntry(ctx, "insert tempo group", func(tx *sql.Tx) error {
		maxPos, err := e.store.MaxBeatPositionTx(ctx, tx)
		if err != nil {
			return err
		}

		p := maxPos + 1
		if startingPosition != nil {
			p = *startingPosition
		}
		n := g.TotalBeats()

		// Make room when inserting before the end of the sequence.
		if p <= maxPos {
			if _, err := e.shiftInTx(ctx, tx, p, n); err != nil {
				return err
			}
		}

		duration := g.BeatDuration()
		result.Beats = make([]timeline.Beat, 0, n)
		for i := 0; i < n; i++ {
			b, err := e.store.InsertBeat(ctx, tx, p+i, timeline.NewBeat{
				Duration:         duration,
				IncludeInMeasure: true,
			})
			if err != nil {
				return err
			}
			result.Beats = append(result.Beats, b)
		}

		result.Measures = make([]timeline.Measure, 0, g.NumOfRepeats)
		for k := 0; k < g.NumOfRepeats; k++ {
			anchor := result.Beats[k*g.BigBeatsPerMeasure]
			m, err := e.store.InsertMeasure(ctx, tx, timeline.NewMeasure{
				StartBeat: anchor.ID,
				IsGhost:   false,
			})
			if err != nil {
				return err
			}
			result.Measures = append(result.Measures, m)
		}
		return nil
	})
	if err != nil {
		return MaterializedGroup{}, err
	}

	slog.Info("tempo group materialized",
		"tempo", g.Tempo,
		"beats_per_measure", g.BigBeatsPerMeasure,
		"repeats", g.NumOfRepeats,
		"beats", len(result.Beats),
		"measures", len(result.Measures),
		"first_position", result.Beats[0].Position,
	)
	return result, nil
}

// MaterializeScore appends each tempo group of a score in order. Every
// group is its own atomic unit with its own history entry; a failure stops
// at the offending group, leaving prior groups committed.
func (e *Engine) MaterializeScore(ctx context.Context, groups []timeline.TempoGroup) ([]MaterializedGroup, error) {
	results := make([]MaterializedGroup, 0, len(groups))
	for i, g := range groups {
		res, err := e.MaterializeTempoGroup(ctx, g, nil)
		if err != nil {
			return results, fmt.Errorf("materialize score group %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}
