// Package testutil provides shared fixtures for tests that need a real
// engine over a throwaway SQLite database.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/cadence/internal/engine"
	"github.com/roach88/cadence/internal/history"
	"github.com/roach88/cadence/internal/store"
)

// NewTempEngine opens an engine over a fresh database in a temporary
// directory. The returned cleanup removes the directory and closes the
// store; callers must invoke it.
func NewTempEngine() (*engine.Engine, func(), error) {
	dir, err := os.MkdirTemp("", "cadence-test-*")
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		os.RemoveAll(dir)
		return nil, nil, err
	}

	ledger, err := history.New(context.Background(), st)
	if err != nil {
		st.Close()
		os.RemoveAll(dir)
		return nil, nil, err
	}

	cleanup := func() {
		st.Close()
		os.RemoveAll(dir)
	}
	return engine.New(st, ledger), cleanup, nil
}

// OpenEngine is the testing.T flavor of NewTempEngine: cleanup is
// registered automatically and setup errors fail the test.
func OpenEngine(t *testing.T) *engine.Engine {
	t.Helper()

	eng, cleanup, err := NewTempEngine()
	if err != nil {
		t.Fatalf("opening test engine: %v", err)
	}
	t.Cleanup(cleanup)
	return eng
}
