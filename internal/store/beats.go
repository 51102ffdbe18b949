package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/cadence/internal/timeline"
)

// beatColumns is the canonical column list for beat queries.
const beatColumns = "id, position, duration, include_in_measure, notes, created_at, updated_at"

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBeat(row rowScanner) (timeline.Beat, error) {
	var b timeline.Beat
	var notes sql.NullString
	if err := row.Scan(&b.ID, &b.Position, &b.Duration, &b.IncludeInMeasure, &notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return timeline.Beat{}, err
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	return b, nil
}

// InsertBeat inserts one beat at the given position and returns the
// persisted row with storage-assigned identity and timestamps.
//
// The position must be free; the UNIQUE constraint rejects collisions and
// the enclosing transaction rolls back.
func (s *Store) InsertBeat(ctx context.Context, tx *sql.Tx, position int, b timeline.NewBeat) (timeline.Beat, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO beats (position, duration, include_in_measure, notes)
		VALUES (?, ?, ?, ?)
	`, position, b.Duration, b.IncludeInMeasure, b.Notes)
	if err != nil {
		return timeline.Beat{}, fmt.Errorf("insert beat: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return timeline.Beat{}, fmt.Errorf("insert beat: last insert id: %w", err)
	}

	created, ok, err := s.BeatByIDTx(ctx, tx, timeline.BeatID(id))
	if err != nil {
		return timeline.Beat{}, err
	}
	if !ok {
		return timeline.Beat{}, fmt.Errorf("insert beat: row %d vanished after insert", id)
	}
	return created, nil
}

// BeatByIDTx returns one beat by identity inside an open transaction.
// The second return value is false if the beat does not exist.
func (s *Store) BeatByIDTx(ctx context.Context, tx *sql.Tx, id timeline.BeatID) (timeline.Beat, bool, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+beatColumns+` FROM beats WHERE id = ?
	`, id)

	b, err := scanBeat(row)
	if err == sql.ErrNoRows {
		return timeline.Beat{}, false, nil
	}
	if err != nil {
		return timeline.Beat{}, false, fmt.Errorf("select beat %d: %w", id, err)
	}
	return b, true, nil
}

// UpdateBeatFields applies a partial update to one beat. Nil fields are
// left unchanged; ClearNotes writes NULL. Returns the updated row and true
// when a write happened, or the zero Beat and false when the target does
// not exist or the update carries no fields.
//
// Position is deliberately not updatable here - reindexing goes through
// SetBeatPosition so a generic update can never break the ordering.
func (s *Store) UpdateBeatFields(ctx context.Context, tx *sql.Tx, u timeline.BeatUpdate) (timeline.Beat, bool, error) {
	var sets []string
	var args []any

	if u.Duration != nil {
		sets = append(sets, "duration = ?")
		args = append(args, *u.Duration)
	}
	if u.IncludeInMeasure != nil {
		sets = append(sets, "include_in_measure = ?")
		args = append(args, *u.IncludeInMeasure)
	}
	if u.ClearNotes {
		sets = append(sets, "notes = NULL")
	} else if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}

	if len(sets) == 0 {
		return timeline.Beat{}, false, nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, u.ID)

	res, err := tx.ExecContext(ctx,
		"UPDATE beats SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return timeline.Beat{}, false, fmt.Errorf("update beat %d: %w", u.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return timeline.Beat{}, false, fmt.Errorf("update beat %d: rows affected: %w", u.ID, err)
	}
	if affected == 0 {
		return timeline.Beat{}, false, nil
	}

	return s.mustBeatTx(ctx, tx, u.ID)
}

// SetBeatPosition moves one beat to a new position. Used only by the
// reindexing operations; the write order there avoids transient UNIQUE
// collisions.
func (s *Store) SetBeatPosition(ctx context.Context, tx *sql.Tx, id timeline.BeatID, position int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE beats SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, position, id)
	if err != nil {
		return fmt.Errorf("set beat %d position %d: %w", id, position, err)
	}
	return nil
}

// DeleteBeats deletes the given beat identities and returns the rows that
// were actually deleted, ordered by position. Nonexistent identities are
// skipped. Measures anchored on a deleted beat are removed by the schema's
// ON DELETE CASCADE.
func (s *Store) DeleteBeats(ctx context.Context, tx *sql.Tx, ids []timeline.BeatID) ([]timeline.Beat, error) {
	if len(ids) == 0 {
		return []timeline.Beat{}, nil
	}

	placeholders, args := idArgs(ids)

	rows, err := tx.QueryContext(ctx,
		"SELECT "+beatColumns+" FROM beats WHERE id IN ("+placeholders+") ORDER BY position ASC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("select beats for delete: %w", err)
	}
	deleted, err := collectBeats(rows)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM beats WHERE id IN ("+placeholders+")",
		args...,
	); err != nil {
		return nil, fmt.Errorf("delete beats: %w", err)
	}

	return deleted, nil
}

// Beats returns all beats (sentinel included) ordered by position.
func (s *Store) Beats(ctx context.Context) ([]timeline.Beat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+beatColumns+` FROM beats ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query beats: %w", err)
	}
	return collectBeats(rows)
}

// BeatsTx is the in-transaction variant of Beats.
func (s *Store) BeatsTx(ctx context.Context, tx *sql.Tx) ([]timeline.Beat, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+beatColumns+` FROM beats ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query beats: %w", err)
	}
	return collectBeats(rows)
}

// NonSentinelBeatsTx returns all beats except the sentinel, ordered by
// position.
func (s *Store) NonSentinelBeatsTx(ctx context.Context, tx *sql.Tx) ([]timeline.Beat, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+beatColumns+` FROM beats WHERE id <> ? ORDER BY position ASC
	`, timeline.SentinelBeatID)
	if err != nil {
		return nil, fmt.Errorf("query non-sentinel beats: %w", err)
	}
	return collectBeats(rows)
}

// BeatsAtOrAfterTx returns all beats with position >= pos, ordered by
// position.
func (s *Store) BeatsAtOrAfterTx(ctx context.Context, tx *sql.Tx, pos int) ([]timeline.Beat, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+beatColumns+` FROM beats WHERE position >= ? ORDER BY position ASC
	`, pos)
	if err != nil {
		return nil, fmt.Errorf("query beats at or after %d: %w", pos, err)
	}
	return collectBeats(rows)
}

// MaxBeatPositionTx returns the highest occupied position. An empty
// timeline reports 0 (the sentinel).
func (s *Store) MaxBeatPositionTx(ctx context.Context, tx *sql.Tx) (int, error) {
	var pos int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), 0) FROM beats").Scan(&pos); err != nil {
		return 0, fmt.Errorf("max beat position: %w", err)
	}
	return pos, nil
}

// SetAllBeatDurations sets the duration of every non-sentinel beat in one
// statement and returns the number of rows written. The sentinel's duration
// stays 0 unconditionally.
func (s *Store) SetAllBeatDurations(ctx context.Context, tx *sql.Tx, duration float64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE beats SET duration = ?, updated_at = CURRENT_TIMESTAMP WHERE id <> ?
	`, duration, timeline.SentinelBeatID)
	if err != nil {
		return 0, fmt.Errorf("set all beat durations: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set all beat durations: rows affected: %w", err)
	}
	return affected, nil
}

// mustBeatTx fetches a beat that is known to exist inside the transaction.
func (s *Store) mustBeatTx(ctx context.Context, tx *sql.Tx, id timeline.BeatID) (timeline.Beat, bool, error) {
	b, ok, err := s.BeatByIDTx(ctx, tx, id)
	if err != nil {
		return timeline.Beat{}, false, err
	}
	if !ok {
		return timeline.Beat{}, false, fmt.Errorf("beat %d vanished mid-transaction", id)
	}
	return b, true, nil
}

func collectBeats(rows *sql.Rows) ([]timeline.Beat, error) {
	defer rows.Close()

	var beats []timeline.Beat
	for rows.Next() {
		b, err := scanBeat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan beat: %w", err)
		}
		beats = append(beats, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate beats: %w", err)
	}

	// Return empty slice instead of nil
	if beats == nil {
		beats = []timeline.Beat{}
	}
	return beats, nil
}

// idArgs expands a beat identity slice into an IN clause placeholder list.
func idArgs(ids []timeline.BeatID) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return placeholders, args
}
