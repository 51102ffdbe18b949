package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cadence/internal/timeline"
)

func TestMaterializeTempoGroup_AppendOnEmpty(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	res, err := e.MaterializeTempoGroup(ctx, timeline.TempoGroup{
		Tempo:              120,
		BigBeatsPerMeasure: 4,
		NumOfRepeats:       2,
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Beats, 8)
	require.Len(t, res.Measures, 2)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, positions(res.Beats))
	for _, b := range res.Beats {
		assert.Equal(t, 0.5, b.Duration)
		assert.True(t, b.IncludeInMeasure)
	}
	assert.Equal(t, res.Beats[0].ID, res.Measures[0].StartBeat)
	assert.Equal(t, res.Beats[4].ID, res.Measures[1].StartBeat)
	assert.False(t, res.Measures[0].IsGhost)

	assert.Equal(t, 1, historyLen(t, e), "one group materialization records one entry")
}

func TestMaterializeTempoGroup_InsertAtStartShiftsExisting(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	// Existing timeline: 30 beats, one trailing ghost measure.
	existing := createBeats(t, e, 30, 0.5)
	ghost, _, err := e.EnsureTrailingGhost(ctx)
	require.NoError(t, err)

	start := 1
	res, err := e.MaterializeTempoGroup(ctx, timeline.TempoGroup{
		Tempo:              180,
		BigBeatsPerMeasure: 5,
		NumOfRepeats:       5,
	}, &start)
	require.NoError(t, err)
	require.Len(t, res.Beats, 25)
	require.Len(t, res.Measures, 5)

	// New block occupies positions 1..25 with duration 60/180.
	for i, b := range res.Beats {
		assert.Equal(t, i+1, b.Position)
		assert.InDelta(t, 60.0/180.0, b.Duration, 1e-12)
	}

	// New measures anchor on block beats 1, 6, 11, 16, 21.
	for k, m := range res.Measures {
		assert.Equal(t, res.Beats[k*5].ID, m.StartBeat)
	}

	// Existing beats shifted forward by 25, relative order intact.
	all, err := e.Beats(ctx)
	require.NoError(t, err)
	require.Len(t, all, 56, "sentinel plus 30 existing plus 25 new")
	assertUniquePositions(t, all)

	byID := make(map[timeline.BeatID]timeline.Beat, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}
	for i, b := range existing {
		moved, ok := byID[b.ID]
		require.True(t, ok)
		assert.Equal(t, i+1+25, moved.Position)
	}

	// Ghost measure untouched and still anchored on the same beat identity.
	measures, err := e.Measures(ctx)
	require.NoError(t, err)
	require.Len(t, measures, 6)
	g, found, err := e.MeasureByID(ctx, ghost.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ghost.StartBeat, g.StartBeat)
}

func TestMaterializeTempoGroup_AppendAfterExisting(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()
	existing := createBeats(t, e, 3, 0.5)

	res, err := e.MaterializeTempoGroup(ctx, timeline.TempoGroup{
		Tempo:              60,
		BigBeatsPerMeasure: 2,
		NumOfRepeats:       1,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, positions(res.Beats))

	// Existing positions untouched by an append.
	all, err := e.Beats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, positions(all))
	for i, b := range existing {
		assert.Equal(t, b.ID, all[i+1].ID)
	}
}

func TestMaterializeTempoGroup_BeatDuration(t *testing.T) {
	e := setupTestEngine(t)

	res, err := e.MaterializeTempoGroup(context.Background(), timeline.TempoGroup{
		Tempo:              90,
		BigBeatsPerMeasure: 3,
		NumOfRepeats:       1,
	}, nil)
	require.NoError(t, err)
	for _, b := range res.Beats {
		assert.True(t, math.Abs(b.Duration-60.0/90.0) < 1e-12)
	}
}

func TestMaterializeTempoGroup_InvalidGroup(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	cases := []timeline.TempoGroup{
		{Tempo: 0, BigBeatsPerMeasure: 4, NumOfRepeats: 1},
		{Tempo: -120, BigBeatsPerMeasure: 4, NumOfRepeats: 1},
		{Tempo: 120, BigBeatsPerMeasure: 0, NumOfRepeats: 1},
		{Tempo: 120, BigBeatsPerMeasure: 4, NumOfRepeats: 0},
	}
	for _, g := range cases {
		_, err := e.MaterializeTempoGroup(ctx, g, nil)
		require.Error(t, err, "%+v", g)
		assert.True(t, IsValidationError(err))
	}
	assert.Zero(t, historyLen(t, e), "rejected groups persist nothing")
}

func TestMaterializeTempoGroup_InvalidPosition(t *testing.T) {
	e := setupTestEngine(t)

	start := 0
	_, err := e.MaterializeTempoGroup(context.Background(), timeline.TempoGroup{
		Tempo:              120,
		BigBeatsPerMeasure: 4,
		NumOfRepeats:       1,
	}, &start)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestMaterializeScore_GroupPerEntry(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	results, err := e.MaterializeScore(ctx, []timeline.TempoGroup{
		{Tempo: 120, BigBeatsPerMeasure: 4, NumOfRepeats: 2},
		{Tempo: 60, BigBeatsPerMeasure: 3, NumOfRepeats: 1},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Second group appends after the first.
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, positions(results[0].Beats))
	assert.Equal(t, []int{9, 10, 11}, positions(results[1].Beats))

	assert.Equal(t, 2, historyLen(t, e), "each group is its own history entry")
}

func TestMaterializeScore_StopsAtInvalidGroup(t *testing.T) {
	e := setupTestEngine(t)
	ctx := context.Background()

	results, err := e.MaterializeScore(ctx, []timeline.TempoGroup{
		{Tempo: 120, BigBeatsPerMeasure: 4, NumOfRepeats: 1},
		{Tempo: 0, BigBeatsPerMeasure: 4, NumOfRepeats: 1},
		{Tempo: 60, BigBeatsPerMeasure: 4, NumOfRepeats: 1},
	})
	require.Error(t, err)
	require.Len(t, results, 1, "prior groups stay committed")

	all, err := e.Beats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5, "sentinel plus the first group only")
	assert.Equal(t, 1, historyLen(t, e))
}
