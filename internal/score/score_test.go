package score

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileScoreBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		score: {
			name: "Opener"
			groups: [
				{tempo: 180, beatsPerMeasure: 5, repeats: 5},
				{tempo: 120, beatsPerMeasure: 4, repeats: 8},
			]
		}
	`)
	require.NoError(t, v.Err())

	s, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
	require.NoError(t, err)

	assert.Equal(t, "Opener", s.Name)
	require.Len(t, s.Groups, 2)
	assert.Equal(t, 180.0, s.Groups[0].Tempo)
	assert.Equal(t, 5, s.Groups[0].BigBeatsPerMeasure)
	assert.Equal(t, 5, s.Groups[0].NumOfRepeats)
	assert.Equal(t, 120.0, s.Groups[1].Tempo)
}

func TestCompileScoreMissingName(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		score: {
			groups: [{tempo: 120, beatsPerMeasure: 4, repeats: 1}]
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "name", compileErr.Field)
}

func TestCompileScoreEmptyGroups(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		score: {
			name: "Empty"
			groups: []
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "groups", compileErr.Field)
}

func TestCompileScoreMissingGroupField(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		score: {
			name: "Partial"
			groups: [{tempo: 120, repeats: 1}]
		}
	`)
	require.NoError(t, v.Err())

	_, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "beatsPerMeasure", compileErr.Field)
}

func TestCompileScoreRejectsInvalidBounds(t *testing.T) {
	ctx := cuecontext.New()

	cases := []struct {
		name string
		cue  string
	}{
		{"zero tempo", `score: { name: "x", groups: [{tempo: 0, beatsPerMeasure: 4, repeats: 1}] }`},
		{"negative tempo", `score: { name: "x", groups: [{tempo: -60, beatsPerMeasure: 4, repeats: 1}] }`},
		{"zero beats per measure", `score: { name: "x", groups: [{tempo: 120, beatsPerMeasure: 0, repeats: 1}] }`},
		{"zero repeats", `score: { name: "x", groups: [{tempo: 120, beatsPerMeasure: 4, repeats: 0}] }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ctx.CompileString(tc.cue)
			require.NoError(t, v.Err())
			_, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
			require.Error(t, err)
		})
	}
}

func TestCompileScoreNormalizesName(t *testing.T) {
	ctx := cuecontext.New()
	// "é" as combining sequence normalizes to the precomposed form.
	v := ctx.CompileString(`
		score: {
			name: "Prélude"
			groups: [{tempo: 120, beatsPerMeasure: 4, repeats: 1}]
		}
	`)
	require.NoError(t, v.Err())

	s, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
	require.NoError(t, err)
	assert.Equal(t, "Prélude", s.Name)
}
