package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a single transaction. The transaction commits only
// if fn returns nil; any error triggers a full rollback, so a multi-row
// write never leaves partial state behind.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TotalChanges returns the total number of rows inserted, updated, or
// deleted on this connection since it was opened. The history ledger takes
// a delta around a unit of work to decide whether anything actually
// changed. Meaningful because the store holds exactly one connection.
func TotalChanges(ctx context.Context, tx *sql.Tx) (int64, error) {
	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT total_changes()").Scan(&n); err != nil {
		return 0, fmt.Errorf("total_changes: %w", err)
	}
	return n, nil
}
