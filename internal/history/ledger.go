package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/cadence/internal/store"
)

// Entry is one recorded undoable unit of work.
type Entry struct {
	ID          int64
	Token       string // correlation token, unique per entry
	Label       string // human-readable operation name
	Seq         int64  // logical clock position
	ChangeCount int64  // net storage rows touched by the unit of work
	CreatedAt   time.Time
}

// Ledger records engine operations as single undoable units.
type Ledger struct {
	store *store.Store
	clock *Clock
}

// New opens a ledger over the given store, resuming the sequence counter
// from the last recorded entry.
func New(ctx context.Context, s *store.Store) (*Ledger, error) {
	var last int64
	err := s.DB().QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM history_entries").Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("read last ledger seq: %w", err)
	}
	return &Ledger{store: s, clock: NewClockAt(last)}, nil
}

// RunAsOneEntry executes body inside exactly one transaction and records at
// most one ledger entry for it.
//
// All storage effects of body commit or roll back together. When body
// performs zero net changes, the transaction still commits but nothing is
// recorded - an empty unit of work must not appear in the undo history.
// When body returns an error, everything rolls back and no entry exists.
func (l *Ledger) RunAsOneEntry(ctx context.Context, label string, body func(tx *sql.Tx) error) error {
	return l.store.WithTx(ctx, func(tx *sql.Tx) error {
		before, err := store.TotalChanges(ctx, tx)
		if err != nil {
			return err
		}

		if err := body(tx); err != nil {
			return err
		}

		after, err := store.TotalChanges(ctx, tx)
		if err != nil {
			return err
		}

		delta := after - before
		if delta == 0 {
			slog.Debug("ledger entry skipped: no net changes", "label", label)
			return nil
		}

		seq := l.clock.Next()
		token := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO history_entries (token, label, seq, change_count)
			VALUES (?, ?, ?, ?)
		`, token, label, seq, delta); err != nil {
			return fmt.Errorf("record ledger entry: %w", err)
		}

		slog.Debug("ledger entry recorded",
			"label", label,
			"seq", seq,
			"token", token,
			"changes", delta,
		)
		return nil
	})
}

// Entries returns all recorded entries in logical order.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := l.store.DB().QueryContext(ctx, `
		SELECT id, token, label, seq, change_count, created_at
		FROM history_entries
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Token, &e.Label, &e.Seq, &e.ChangeCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// LastEntry returns the most recent entry, or false if the ledger is empty.
func (l *Ledger) LastEntry(ctx context.Context) (Entry, bool, error) {
	var e Entry
	err := l.store.DB().QueryRowContext(ctx, `
		SELECT id, token, label, seq, change_count, created_at
		FROM history_entries
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&e.ID, &e.Token, &e.Label, &e.Seq, &e.ChangeCount, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("query last ledger entry: %w", err)
	}
	return e, true, nil
}

// Len returns the number of recorded entries.
func (l *Ledger) Len(ctx context.Context) (int, error) {
	var n int
	if err := l.store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM history_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return n, nil
}
