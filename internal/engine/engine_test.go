package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cadence/internal/history"
	"github.com/roach88/cadence/internal/store"
	"github.com/roach88/cadence/internal/timeline"
)

// setupTestEngine creates an engine over a real SQLite store.
func setupTestEngine(t *testing.T) *Engine {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	l, err := history.New(context.Background(), s)
	require.NoError(t, err)

	return New(s, l)
}

// createBeats seeds n beats with the given duration and returns them.
func createBeats(t *testing.T, e *Engine, n int, duration float64) []timeline.Beat {
	t.Helper()

	newBeats := make([]timeline.NewBeat, n)
	for i := range newBeats {
		newBeats[i] = timeline.NewBeat{Duration: duration, IncludeInMeasure: true}
	}
	created, err := e.CreateBeats(context.Background(), newBeats, nil)
	require.NoError(t, err)
	require.Len(t, created, n)
	return created
}

// historyLen returns the number of recorded history entries.
func historyLen(t *testing.T, e *Engine) int {
	t.Helper()

	n, err := e.History().Len(context.Background())
	require.NoError(t, err)
	return n
}

// assertUniquePositions fails if two beats share a position.
func assertUniquePositions(t *testing.T, beats []timeline.Beat) {
	t.Helper()

	seen := make(map[int]timeline.BeatID, len(beats))
	for _, b := range beats {
		if other, ok := seen[b.Position]; ok {
			t.Fatalf("beats %d and %d share position %d", other, b.ID, b.Position)
		}
		seen[b.Position] = b.ID
	}
}

// positions projects beats onto their positions in slice order.
func positions(beats []timeline.Beat) []int {
	out := make([]int, len(beats))
	for i, b := range beats {
		out[i] = b.Position
	}
	return out
}
