package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/cadence/internal/timeline"
)

const measureColumns = "m.id, m.start_beat, m.rehearsal_mark, m.notes, m.is_ghost, m.created_at, m.updated_at"

func scanMeasure(row rowScanner) (timeline.Measure, error) {
	var m timeline.Measure
	var mark, notes sql.NullString
	if err := row.Scan(&m.ID, &m.StartBeat, &mark, &notes, &m.IsGhost, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return timeline.Measure{}, err
	}
	if mark.Valid {
		m.RehearsalMark = &mark.String
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	return m, nil
}

// InsertMeasure inserts one measure referencing an existing beat and
// returns the persisted row. The foreign key rejects references to beats
// that do not exist.
func (s *Store) InsertMeasure(ctx context.Context, tx *sql.Tx, m timeline.NewMeasure) (timeline.Measure, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO measures (start_beat, rehearsal_mark, notes, is_ghost)
		VALUES (?, ?, ?, ?)
	`, m.StartBeat, m.RehearsalMark, m.Notes, m.IsGhost)
	if err != nil {
		return timeline.Measure{}, fmt.Errorf("insert measure: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return timeline.Measure{}, fmt.Errorf("insert measure: last insert id: %w", err)
	}

	created, ok, err := s.MeasureByIDTx(ctx, tx, timeline.MeasureID(id))
	if err != nil {
		return timeline.Measure{}, err
	}
	if !ok {
		return timeline.Measure{}, fmt.Errorf("insert measure: row %d vanished after insert", id)
	}
	return created, nil
}

// UpdateMeasureFields applies a partial update to one measure. Nil fields
// are left unchanged; the Clear flags write NULL. Returns the updated row
// and true when a write happened, or false when the target does not exist.
func (s *Store) UpdateMeasureFields(ctx context.Context, tx *sql.Tx, u timeline.MeasureUpdate) (timeline.Measure, bool, error) {
	var sets []string
	var args []any

	if u.StartBeat != nil {
		sets = append(sets, "start_beat = ?")
		args = append(args, *u.StartBeat)
	}
	if u.ClearRehearsalMark {
		sets = append(sets, "rehearsal_mark = NULL")
	} else if u.RehearsalMark != nil {
		sets = append(sets, "rehearsal_mark = ?")
		args = append(args, *u.RehearsalMark)
	}
	if u.ClearNotes {
		sets = append(sets, "notes = NULL")
	} else if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}
	if u.IsGhost != nil {
		sets = append(sets, "is_ghost = ?")
		args = append(args, *u.IsGhost)
	}

	if len(sets) == 0 {
		// Field-less update still has to distinguish "exists" from "not
		// found" so the engine can fail the batch on a bad identity.
		m, ok, err := s.MeasureByIDTx(ctx, tx, u.ID)
		if err != nil || !ok {
			return timeline.Measure{}, false, err
		}
		return m, true, nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, u.ID)

	res, err := tx.ExecContext(ctx,
		"UPDATE measures SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return timeline.Measure{}, false, fmt.Errorf("update measure %d: %w", u.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return timeline.Measure{}, false, fmt.Errorf("update measure %d: rows affected: %w", u.ID, err)
	}
	if affected == 0 {
		return timeline.Measure{}, false, nil
	}

	m, ok, err := s.MeasureByIDTx(ctx, tx, u.ID)
	if err != nil {
		return timeline.Measure{}, false, err
	}
	if !ok {
		return timeline.Measure{}, false, fmt.Errorf("measure %d vanished mid-transaction", u.ID)
	}
	return m, true, nil
}

// DeleteMeasures deletes the given measure identities and returns the rows
// that were actually deleted in timeline order. Nonexistent identities are
// skipped.
func (s *Store) DeleteMeasures(ctx context.Context, tx *sql.Tx, ids []timeline.MeasureID) ([]timeline.Measure, error) {
	if len(ids) == 0 {
		return []timeline.Measure{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT `+measureColumns+`
		FROM measures m
		JOIN beats b ON m.start_beat = b.id
		WHERE m.id IN (`+placeholders+`)
		ORDER BY b.position ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("select measures for delete: %w", err)
	}
	deleted, err := collectMeasures(rows)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM measures WHERE id IN ("+placeholders+")",
		args...,
	); err != nil {
		return nil, fmt.Errorf("delete measures: %w", err)
	}

	return deleted, nil
}

// Measures returns all measures in timeline order. Ordering is derived by
// joining on the start beat's position - it is never stored on the measure.
func (s *Store) Measures(ctx context.Context) ([]timeline.Measure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+measureColumns+`
		FROM measures m
		JOIN beats b ON m.start_beat = b.id
		ORDER BY b.position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query measures: %w", err)
	}
	return collectMeasures(rows)
}

// MeasuresTx is the in-transaction variant of Measures. Read-only and safe
// to issue inside an already-open transaction to observe the pre-commit
// snapshot.
func (s *Store) MeasuresTx(ctx context.Context, tx *sql.Tx) ([]timeline.Measure, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+measureColumns+`
		FROM measures m
		JOIN beats b ON m.start_beat = b.id
		ORDER BY b.position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query measures: %w", err)
	}
	return collectMeasures(rows)
}

// MeasureByID returns one measure by identity.
func (s *Store) MeasureByID(ctx context.Context, id timeline.MeasureID) (timeline.Measure, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+measureColumns+` FROM measures m WHERE m.id = ?
	`, id)
	return measureRow(row, id)
}

// MeasureByIDTx is the in-transaction variant of MeasureByID.
func (s *Store) MeasureByIDTx(ctx context.Context, tx *sql.Tx, id timeline.MeasureID) (timeline.Measure, bool, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+measureColumns+` FROM measures m WHERE m.id = ?
	`, id)
	return measureRow(row, id)
}

// MeasuresByStartBeat returns all measures anchored on the given beat.
func (s *Store) MeasuresByStartBeat(ctx context.Context, beatID timeline.BeatID) ([]timeline.Measure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+measureColumns+` FROM measures m WHERE m.start_beat = ? ORDER BY m.id ASC
	`, beatID)
	if err != nil {
		return nil, fmt.Errorf("query measures by start beat %d: %w", beatID, err)
	}
	return collectMeasures(rows)
}

// AnyMeasures reports whether any measure exists.
func (s *Store) AnyMeasures(ctx context.Context) (bool, error) {
	return anyMeasures(ctx, s.db.QueryRowContext)
}

// AnyMeasuresTx is the in-transaction variant of AnyMeasures. Read-only
// and reentrant inside an already-open transaction.
func (s *Store) AnyMeasuresTx(ctx context.Context, tx *sql.Tx) (bool, error) {
	return anyMeasures(ctx, tx.QueryRowContext)
}

func anyMeasures(ctx context.Context, queryRow func(ctx context.Context, query string, args ...any) *sql.Row) (bool, error) {
	var exists bool
	err := queryRow(ctx, "SELECT EXISTS (SELECT 1 FROM measures)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check measures exist: %w", err)
	}
	return exists, nil
}

func measureRow(row *sql.Row, id timeline.MeasureID) (timeline.Measure, bool, error) {
	m, err := scanMeasure(row)
	if err == sql.ErrNoRows {
		return timeline.Measure{}, false, nil
	}
	if err != nil {
		return timeline.Measure{}, false, fmt.Errorf("select measure %d: %w", id, err)
	}
	return m, true, nil
}

func collectMeasures(rows *sql.Rows) ([]timeline.Measure, error) {
	defer rows.Close()

	var measures []timeline.Measure
	for rows.Next() {
		m, err := scanMeasure(rows)
		if err != nil {
			return nil, fmt.Errorf("scan measure: %w", err)
		}
		measures = append(measures, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measures: %w", err)
	}

	// Return empty slice instead of nil
	if measures == nil {
		measures = []timeline.Measure{}
	}
	return measures, nil
}
