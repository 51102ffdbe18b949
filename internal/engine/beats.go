package engine

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/roach88/cadence/internal/timeline"
)

// CreateBeats appends new beats to the timeline, or inserts them starting
// at startingPosition when supplied. Positions are assigned as consecutive
// integers; the sentinel is never touched. Returns the created rows in
// input order.
//
// Exactly one transaction and one history entry, independent of batch size.
// An empty input is a true no-op: no transaction is opened.
func (e *Engine) CreateBeats(ctx context.Context, newBeats []timeline.NewBeat, startingPosition *int) ([]timeline.Beat, error) {
	if len(newBeats) == 0 {
		return []timeline.Beat{}, nil
	}
	if startingPosition != nil && *startingPosition < 1 {
		return nil, &ValidationError{
			Code:    ErrCodeInvalidPosition,
			Message: "beat positions start at 1; position 0 is reserved for the sentinel",
		}
	}
	for _, b := range newBeats {
		if b.Duration < 0 {
			return nil, &ValidationError{
				Code:    ErrCodeInvalidDuration,
				Message: "beat duration must not be negative",
			}
		}
	}

	created := make([]timeline.Beat, 0, len(newBeats))
	err := e.ledger.RunAsOneEntry(ctx, "create beats", func(tx *sql.Tx) error {
		start := 0
		if startingPosition != nil {
			start = *startingPosition
		} else {
			maxPos, err := e.store.MaxBeatPositionTx(ctx, tx)
			if err != nil {
				return err
			}
			start = maxPos + 1
		}

		for i, nb := range newBeats {
			nb.Notes = timeline.NormalizeTextPtr(nb.Notes)
			b, err := e.store.InsertBeat(ctx, tx, start+i, nb)
			if err != nil {
				return err
			}
			created = append(created, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("beats created", "count", len(created), "first_position", created[0].Position)
	return created, nil
}

// UpdateBeats applies partial updates to the given beats. Updates targeting
// the sentinel are silently filtered before anything is written; if the
// filter empties the batch, no transaction is opened and nothing is
// recorded. Updates targeting nonexistent identities are skipped. Returns
// the rows actually updated.
func (e *Engine) UpdateBeats(ctx context.Context, updates []timeline.BeatUpdate) ([]timeline.Beat, error) {
	filtered := make([]timeline.BeatUpdate, 0, len(updates))
	for _, u := range updates {
		if u.ID.IsSentinel() {
			slog.Debug("sentinel beat update filtered", "id", u.ID)
			continue
		}
		filtered = append(filtered, u)
	}
	if len(filtered) == 0 {
		return []timeline.Beat{}, nil
	}

	updated := make([]timeline.Beat, 0, len(filtered))
	err := e.ledger.RunAsOneEntry(ctx, "update beats", func(tx *sql.Tx) error {
		for _, u := range filtered {
			u.Notes = timeline.NormalizeTextPtr(u.Notes)
			b, applied, err := e.store.UpdateBeatFields(ctx, tx, u)
			if err != nil {
				return err
			}
			if !applied {
				continue
			}
			updated = append(updated, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBeats deletes the given beat identities. The sentinel is always
// filtered out silently; nonexistent identities are ignored. Measures
// anchored on a deleted beat are removed in the same transaction (the
// explicit referential policy for beat deletion). Returns the beats
// actually deleted.
func (e *Engine) DeleteBeats(ctx context.Context, ids []timeline.BeatID) ([]timeline.Beat, error) {
	filtered := make([]timeline.BeatID, 0, len(ids))
	for _, id := range ids {
		if id.IsSentinel() {
			slog.Debug("sentinel beat delete filtered", "id", id)
			continue
		}
		filtered = append(filtered, id)
	}
	if len(filtered) == 0 {
		return []timeline.Beat{}, nil
	}

	var deleted []timeline.Beat
	err := e.ledger.RunAsOneEntry(ctx, "delete beats", func(tx *sql.Tx) error {
		var err error
		deleted, err = e.store.DeleteBeats(ctx, tx, filtered)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// UpdateAllBeatDurations sets the duration of every non-sentinel beat to
// the given value in one statement and returns the updated rows. The
// sentinel's duration remains 0 unconditionally. With no non-sentinel beats
// the call commits empty and records no history entry.
func (e *Engine) UpdateAllBeatDurations(ctx context.Context, duration float64) ([]timeline.Beat, error) {
	if duration < 0 {
		return nil, &ValidationError{
			Code:    ErrCodeInvalidDuration,
			Message: "beat duration must not be negative",
		}
	}

	var updated []timeline.Beat
	err := e.ledger.RunAsOneEntry(ctx, "set all beat durations", func(tx *sql.Tx) error {
		n, err := e.store.SetAllBeatDurations(ctx, tx, duration)
		if err != nil {
			return err
		}
		if n == 0 {
			updated = []timeline.Beat{}
			return nil
		}
		updated, err = e.store.NonSentinelBeatsTx(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ShiftBeats moves every beat whose position >= startingPosition by
// shiftAmount (positive or negative). Validation runs before any write:
// the pivot must be > 0, and no affected beat may land below position 1.
// A violation aborts the whole operation with nothing persisted and no
// history entry. Returns the beats whose position changed.
func (e *Engine) ShiftBeats(ctx context.Context, startingPosition, shiftAmount int) ([]timeline.Beat, error) {
	if startingPosition <= 0 {
		return nil, NewShiftPivotError(startingPosition)
	}
	if shiftAmount == 0 {
		return []timeline.Beat{}, nil
	}

	var shifted []timeline.Beat
	err := e.ledger.RunAsOneEntry(ctx, "shift beats", func(tx *sql.Tx) error {
		var err error
		shifted, err = e.shiftInTx(ctx, tx, startingPosition, shiftAmount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return shifted, nil
}

// shiftInTx performs the shift inside an open transaction. Shared with the
// tempo group materializer, which shifts and inserts in one unit of work.
//
// Write order avoids transient UNIQUE collisions: shifting up moves the
// highest positions first, shifting down the lowest first, so a moved row
// never lands on a position an unmoved row still holds.
func (e *Engine) shiftInTx(ctx context.Context, tx *sql.Tx, startingPosition, shiftAmount int) ([]timeline.Beat, error) {
	affected, err := e.store.BeatsAtOrAfterTx(ctx, tx, startingPosition)
	if err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return []timeline.Beat{}, nil
	}

	if shiftAmount < 0 {
		minAffected := affected[0].Position
		if minAffected+shiftAmount < 1 {
			return nil, NewShiftBelowMinimumError(minAffected, shiftAmount)
		}
	}

	if shiftAmount > 0 {
		for i := len(affected) - 1; i >= 0; i-- {
			b := affected[i]
			if err := e.store.SetBeatPosition(ctx, tx, b.ID, b.Position+shiftAmount); err != nil {
				return nil, err
			}
		}
	} else {
		for _, b := range affected {
			if err := e.store.SetBeatPosition(ctx, tx, b.ID, b.Position+shiftAmount); err != nil {
				return nil, err
			}
		}
	}

	shifted := make([]timeline.Beat, 0, len(affected))
	for _, b := range affected {
		moved, _, err := e.store.BeatByIDTx(ctx, tx, b.ID)
		if err != nil {
			return nil, err
		}
		shifted = append(shifted, moved)
	}

	slog.Debug("beats shifted",
		"starting_position", startingPosition,
		"shift_amount", shiftAmount,
		"count", len(shifted),
	)
	return shifted, nil
}

// FlattenOrder recomputes positions for all non-sentinel beats as the dense
// sequence 1..N in their current relative order. Only rows whose position
// actually differs are written, so a timeline that is already dense commits
// without recording a history entry. Returns the beats that moved.
func (e *Engine) FlattenOrder(ctx context.Context) ([]timeline.Beat, error) {
	var moved []timeline.Beat
	err := e.ledger.RunAsOneEntry(ctx, "flatten beat order", func(tx *sql.Tx) error {
		beats, err := e.store.NonSentinelBeatsTx(ctx, tx)
		if err != nil {
			return err
		}

		// Compacting assigns each row a position <= its current one, and
		// rows are visited in ascending order, so no write can collide
		// with a position a later row still occupies.
		var movedIDs []timeline.BeatID
		for i, b := range beats {
			want := i + 1
			if b.Position == want {
				continue
			}
			if err := e.store.SetBeatPosition(ctx, tx, b.ID, want); err != nil {
				return err
			}
			movedIDs = append(movedIDs, b.ID)
		}

		moved = make([]timeline.Beat, 0, len(movedIDs))
		for _, id := range movedIDs {
			b, _, err := e.store.BeatByIDTx(ctx, tx, id)
			if err != nil {
				return err
			}
			moved = append(moved, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// ApplyDefaultBeatDuration stores a new default beat duration and, only
// while the timeline has no measures yet (the uniform grid state), pushes
// it onto every non-sentinel beat. Once measures exist the bulk overwrite
// is skipped and only the configured default changes. Returns the beats
// rewritten, if any.
func (e *Engine) ApplyDefaultBeatDuration(ctx context.Context, duration float64) ([]timeline.Beat, error) {
	if duration < 0 {
		return nil, &ValidationError{
			Code:    ErrCodeInvalidDuration,
			Message: "beat duration must not be negative",
		}
	}

	updated := []timeline.Beat{}
	err := e.ledger.RunAsOneEntry(ctx, "apply default beat duration", func(tx *sql.Tx) error {
		if err := e.store.SetDefaultBeatDuration(ctx, tx, duration); err != nil {
			return err
		}

		hasMeasures, err := e.store.AnyMeasuresTx(ctx, tx)
		if err != nil {
			return err
		}
		if hasMeasures {
			slog.Debug("default beat duration stored; beats untouched (measures exist)", "duration", duration)
			return nil
		}

		n, err := e.store.SetAllBeatDurations(ctx, tx, duration)
		if err != nil {
			return err
		}
		if n > 0 {
			updated, err = e.store.NonSentinelBeatsTx(ctx, tx)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
