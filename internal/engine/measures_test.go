package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadence/internal/timeline"
)

func TestCreateMeasures_BatchInOrder(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 4, 0.5)

	mark := "A"
	created, err := e.CreateMeasures(ctx, []timeline.NewMeasure{
		{StartBeat: beats[0].ID, RehearsalMark: &mark},
		{StartBeat: beats[2].ID},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, beats[0].ID, created[0].StartBeat)
	assert.Equal(t, beats[2].ID, created[1].StartBeat)
	require.NotNil(t, created[0].RehearsalMark)
	assert.Equal(t, "A", *created[0].RehearsalMark)

	assert.Equal(t, 2, historyLen(t, e), "beat seeding plus one measure batch")
}

func TestCreateMeasures_MissingBeatFailsBatch(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 1, 0.5)
	before := historyLen(t, e)

	_, err := e.CreateMeasures(ctx, []timeline.NewMeasure{
		{StartBeat: beats[0].ID},
		{StartBeat: 999},
	})
	require.Error(t, err)

	measures, err := e.Measures(ctx)
	require.NoError(t, err)
	assert.Empty(t, measures, "failed batch persists nothing")
	assert.Equal(t, before, historyLen(t, e))
}

func TestCreateMeasures_EmptyInput(t *testing.T) {
	e := setupTestEngine(t)

	created, err := e.CreateMeasures(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Zero(t, historyLen(t, e))
}

func TestUpdateMeasures_PartialFields(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 2, 0.5)

	mark := "A"
	notes := "hold the fermata"
	created, err := e.CreateMeasures(ctx, []timeline.NewMeasure{
		{StartBeat: beats[0].ID, RehearsalMark: &mark, Notes: &notes},
	})
	require.NoError(t, err)

	newMark := "B"
	updated, err := e.UpdateMeasures(ctx, []timeline.MeasureUpdate{
		{ID: created[0].ID, RehearsalMark: &newMark, ClearNotes: true},
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.NotNil(t, updated[0].RehearsalMark)
	assert.Equal(t, "B", *updated[0].RehearsalMark)
	assert.Nil(t, updated[0].Notes)
	assert.Equal(t, beats[0].ID, updated[0].StartBeat, "absent start beat left unchanged")
}

func TestUpdateMeasures_Rebase(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 3, 0.5)

	created, err := e.CreateMeasures(ctx, []timeline.NewMeasure{{StartBeat: beats[0].ID}})
	require.NoError(t, err)

	target := beats[2].ID
	updated, err := e.UpdateMeasures(ctx, []timeline.MeasureUpdate{
		{ID: created[0].ID, StartBeat: &target},
	})
	require.NoError(t, err)
	assert.Equal(t, target, updated[0].StartBeat)
}

func TestUpdateMeasures_NotFoundAbortsBatch(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 2, 0.5)

	mark := "A"
	created, err := e.CreateMeasures(ctx, []timeline.NewMeasure{
		{StartBeat: beats[0].ID, RehearsalMark: &mark},
	})
	require.NoError(t, err)
	before := historyLen(t, e)

	newMark := "Z"
	_, err = e.UpdateMeasures(ctx, []timeline.MeasureUpdate{
		{ID: created[0].ID, RehearsalMark: &newMark},
		{ID: 999, RehearsalMark: &newMark},
	})
	require.Error(t, err)
	assert.True(t, IsMeasureNotFound(err))

	// First update rolled back with the rest of the batch.
	m, found, err := e.MeasureByID(ctx, created[0].ID)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, m.RehearsalMark)
	assert.Equal(t, "A", *m.RehearsalMark)
	assert.Equal(t, before, historyLen(t, e))
}

func TestDeleteMeasures_IgnoresMissing(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 2, 0.5)

	created, err := e.CreateMeasures(ctx, []timeline.NewMeasure{
		{StartBeat: beats[0].ID},
		{StartBeat: beats[1].ID},
	})
	require.NoError(t, err)

	deleted, err := e.DeleteMeasures(ctx, []timeline.MeasureID{created[0].ID, 999})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, created[0].ID, deleted[0].ID)

	remaining, err := e.Measures(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, created[1].ID, remaining[0].ID)

	// Beats are untouched by measure deletion.
	all, err := e.Beats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMeasures_OrderedByStartBeatPosition(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 4, 0.5)

	// Insert out of timeline order.
	_, err := e.CreateMeasures(ctx, []timeline.NewMeasure{
		{StartBeat: beats[2].ID},
		{StartBeat: beats[0].ID},
	})
	require.NoError(t, err)

	measures, err := e.Measures(ctx)
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.Equal(t, beats[0].ID, measures[0].StartBeat)
	assert.Equal(t, beats[2].ID, measures[1].StartBeat)
}

func TestEnsureTrailingGhost_CreatesWhenAbsent(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	beats := createBeats(t, e, 3, 0.5)

	ghost, found, err := e.EnsureTrailingGhost(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, ghost.IsGhost)
	assert.Equal(t, beats[2].ID, ghost.StartBeat)
}

func TestEnsureTrailingGhost_AlreadyInPlace(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	createBeats(t, e, 3, 0.5)

	first, _, err := e.EnsureTrailingGhost(ctx)
	require.NoError(t, err)
	before := historyLen(t, e)

	second, found, err := e.EnsureTrailingGhost(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, before, historyLen(t, e), "no net change records nothing")
}

func TestEnsureTrailingGhost_RelocatesAfterAppend(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	createBeats(t, e, 2, 0.5)

	first, _, err := e.EnsureTrailingGhost(ctx)
	require.NoError(t, err)

	appended := createBeats(t, e, 1, 0.5)

	moved, found, err := e.EnsureTrailingGhost(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, moved.ID, "existing ghost is moved, not duplicated")
	assert.Equal(t, appended[0].ID, moved.StartBeat)

	measures, err := e.Measures(ctx)
	require.NoError(t, err)
	assert.Len(t, measures, 1)
}

func TestEnsureTrailingGhost_NoBeats(t *testing.T) {
	e := setupTestEngine(t)

	_, found, err := e.EnsureTrailingGhost(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, historyLen(t, e))
}
