package engine

import (
	"context"

	"github.com/roach88/cadence/internal/history"
	"github.com/roach88/cadence/internal/store"
	"github.com/roach88/cadence/internal/timeline"
)

// Engine coordinates all timeline mutations.
//
// Single-process, single logical writer: the engine implements no locking
// of its own and relies entirely on the store's transaction primitive for
// isolation. Callers are expected to serialize mutating operations.
type Engine struct {
	store  *store.Store
	ledger *history.Ledger
}

// New creates an Engine over the given store and history ledger.
func New(s *store.Store, l *history.Ledger) *Engine {
	return &Engine{store: s, ledger: l}
}

// Beats returns the full timeline (sentinel included) ordered by position.
// Pure read: no transaction, no history entry.
func (e *Engine) Beats(ctx context.Context) ([]timeline.Beat, error) {
	return e.store.Beats(ctx)
}

// Measures returns all measures in timeline order.
func (e *Engine) Measures(ctx context.Context) ([]timeline.Measure, error) {
	return e.store.Measures(ctx)
}

// MeasureByID returns one measure by identity.
func (e *Engine) MeasureByID(ctx context.Context, id timeline.MeasureID) (timeline.Measure, bool, error) {
	return e.store.MeasureByID(ctx, id)
}

// MeasuresByStartBeat returns all measures anchored on the given beat.
func (e *Engine) MeasuresByStartBeat(ctx context.Context, beatID timeline.BeatID) ([]timeline.Measure, error) {
	return e.store.MeasuresByStartBeat(ctx, beatID)
}

// AnyMeasuresExist reports whether the timeline has any measures.
func (e *Engine) AnyMeasuresExist(ctx context.Context) (bool, error) {
	return e.store.AnyMeasures(ctx)
}

// DefaultBeatDuration returns the configured default beat duration.
func (e *Engine) DefaultBeatDuration(ctx context.Context) (float64, error) {
	return e.store.DefaultBeatDuration(ctx)
}

// History returns the undo-history ledger for inspection.
func (e *Engine) History() *history.Ledger {
	return e.ledger
}
