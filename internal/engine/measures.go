package engine

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/roach88/cadence/internal/timeline"
)

// CreateMeasures inserts measures referencing existing beat identities and
// returns the created rows in input order. An empty input is a true no-op:
// no transaction, no history entry. A reference to a missing beat fails the
// whole batch.
func (e *Engine) CreateMeasures(ctx context.Context, items []timeline.NewMeasure) ([]timeline.Measure, error) {
	if len(items) == 0 {
		return []timeline.Measure{}, nil
	}

	created := make([]timeline.Measure, 0, len(items))
	err := e.ledger.RunAsOneEntry(ctx, "create measures", func(tx *sql.Tx) error {
		for _, nm := range items {
			nm.RehearsalMark = timeline.NormalizeTextPtr(nm.RehearsalMark)
			nm.Notes = timeline.NormalizeTextPtr(nm.Notes)
			m, err := e.store.InsertMeasure(ctx, tx, nm)
			if err != nil {
				return err
			}
			created = append(created, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateMeasures applies per-row partial updates keyed by identity. Unlike
// beats there is no sentinel to filter, and updating a nonexistent identity
// is an error that aborts the whole batch transactionally. Returns the
// updated rows in input order.
func (e *Engine) UpdateMeasures(ctx context.Context, updates []timeline.MeasureUpdate) ([]timeline.Measure, error) {
	if len(updates) == 0 {
		return []timeline.Measure{}, nil
	}

	updated := make([]timeline.Measure, 0, len(updates))
	err := e.ledger.RunAsOneEntry(ctx, "update measures", func(tx *sql.Tx) error {
		for _, u := range updates {
			u.RehearsalMark = timeline.NormalizeTextPtr(u.RehearsalMark)
			u.Notes = timeline.NormalizeTextPtr(u.Notes)
			m, applied, err := e.store.UpdateMeasureFields(ctx, tx, u)
			if err != nil {
				return err
			}
			if !applied {
				return NewMeasureNotFoundError(int64(u.ID))
			}
			updated = append(updated, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMeasures deletes existing rows matching the given identities.
// Nonexistent identities are ignored; an empty set is a true no-op.
// Returns the measures actually deleted.
func (e *Engine) DeleteMeasures(ctx context.Context, ids []timeline.MeasureID) ([]timeline.Measure, error) {
	if len(ids) == 0 {
		return []timeline.Measure{}, nil
	}

	var deleted []timeline.Measure
	err := e.ledger.RunAsOneEntry(ctx, "delete measures", func(tx *sql.Tx) error {
		var err error
		deleted, err = e.store.DeleteMeasures(ctx, tx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// EnsureTrailingGhost relocates or creates the ghost measure that marks
// "timeline continues with no defined material yet", anchoring it on the
// last beat. With no non-sentinel beats this is a no-op. When the ghost is
// already anchored correctly the transaction commits without net changes
// and records nothing.
//
// The convention "at most one ghost measure, always last" is respected
// here, not enforced globally; extra ghost measures are left alone.
func (e *Engine) EnsureTrailingGhost(ctx context.Context) (timeline.Measure, bool, error) {
	var ghost timeline.Measure
	var found bool
	err := e.ledger.RunAsOneEntry(ctx, "ensure trailing ghost", func(tx *sql.Tx) error {
		beats, err := e.store.NonSentinelBeatsTx(ctx, tx)
		if err != nil {
			return err
		}
		if len(beats) == 0 {
			return nil
		}
		last := beats[len(beats)-1]

		measures, err := e.store.MeasuresTx(ctx, tx)
		if err != nil {
			return err
		}
		for _, m := range measures {
			if !m.IsGhost {
				continue
			}
			if m.StartBeat == last.ID {
				ghost, found = m, true
				return nil
			}
			// Relocate the first misplaced ghost to the timeline end.
			startBeat := last.ID
			moved, applied, err := e.store.UpdateMeasureFields(ctx, tx, timeline.MeasureUpdate{
				ID:        m.ID,
				StartBeat: &startBeat,
			})
			if err != nil {
				return err
			}
			if !applied {
				return NewMeasureNotFoundError(int64(m.ID))
			}
			ghost, found = moved, true
			slog.Debug("trailing ghost relocated", "measure_id", moved.ID, "start_beat", last.ID)
			return nil
		}

		created, err := e.store.InsertMeasure(ctx, tx, timeline.NewMeasure{
			StartBeat: last.ID,
			IsGhost:   true,
		})
		if err != nil {
			return err
		}
		ghost, found = created, true
		slog.Debug("trailing ghost created", "measure_id", created.ID, "start_beat", last.ID)
		return nil
	})
	if err != nil {
		return timeline.Measure{}, false, err
	}
	return ghost, found, nil
}
