package store

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultBeatDuration returns the configured default beat duration from the
// single-row utility table.
func (s *Store) DefaultBeatDuration(ctx context.Context) (float64, error) {
	var d float64
	err := s.db.QueryRowContext(ctx, "SELECT default_beat_duration FROM utility WHERE id = 1").Scan(&d)
	if err != nil {
		return 0, fmt.Errorf("select default beat duration: %w", err)
	}
	return d, nil
}

// SetDefaultBeatDuration writes the default beat duration inside an open
// transaction. Whether the new default is also pushed onto existing beats
// is the engine's decision, not the store's.
func (s *Store) SetDefaultBeatDuration(ctx context.Context, tx *sql.Tx, duration float64) error {
	_, err := tx.ExecContext(ctx, "UPDATE utility SET default_beat_duration = ? WHERE id = 1", duration)
	if err != nil {
		return fmt.Errorf("set default beat duration: %w", err)
	}
	return nil
}
