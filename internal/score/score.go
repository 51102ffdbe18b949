// Package score loads drill scores written in CUE and compiles them into
// tempo groups the engine can materialize onto the timeline.
package score

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cadence/internal/timeline"
)

// Score is a named ordered list of tempo groups. Applying a score
// materializes each group onto the timeline in order.
type Score struct {
	Name   string
	Groups []timeline.TempoGroup
}

// CompileScore parses a CUE value into a Score.
//
// The CUE value should be the score struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`score: { name: "Opener", groups: [...] }`)
//	s, err := CompileScore(v.LookupPath(cue.ParsePath("score")))
func CompileScore(v cue.Value) (*Score, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Score{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "score name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	s.Name = timeline.NormalizeText(name)

	groupsVal := v.LookupPath(cue.ParsePath("groups"))
	if !groupsVal.Exists() {
		return nil, &CompileError{
			Field:   "groups",
			Message: "at least one tempo group is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := groupsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		g, err := compileGroup(iter.Value())
		if err != nil {
			return nil, err
		}
		s.Groups = append(s.Groups, g)
	}
	if len(s.Groups) == 0 {
		return nil, &CompileError{
			Field:   "groups",
			Message: "at least one tempo group is required",
			Pos:     groupsVal.Pos(),
		}
	}

	return s, nil
}

// compileGroup parses one tempo group entry and validates its bounds.
func compileGroup(v cue.Value) (timeline.TempoGroup, error) {
	var g timeline.TempoGroup

	tempoVal := v.LookupPath(cue.ParsePath("tempo"))
	if !tempoVal.Exists() {
		return g, &CompileError{Field: "tempo", Message: "tempo is required", Pos: v.Pos()}
	}
	tempo, err := tempoVal.Float64()
	if err != nil {
		return g, formatCUEError(err)
	}
	g.Tempo = tempo

	bpmVal := v.LookupPath(cue.ParsePath("beatsPerMeasure"))
	if !bpmVal.Exists() {
		return g, &CompileError{Field: "beatsPerMeasure", Message: "beatsPerMeasure is required", Pos: v.Pos()}
	}
	bpm, err := bpmVal.Int64()
	if err != nil {
		return g, formatCUEError(err)
	}
	g.BigBeatsPerMeasure = int(bpm)

	repeatsVal := v.LookupPath(cue.ParsePath("repeats"))
	if !repeatsVal.Exists() {
		return g, &CompileError{Field: "repeats", Message: "repeats is required", Pos: v.Pos()}
	}
	repeats, err := repeatsVal.Int64()
	if err != nil {
		return g, formatCUEError(err)
	}
	g.NumOfRepeats = int(repeats)

	if err := g.Validate(); err != nil {
		return g, &CompileError{
			Field:   "groups",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return g, nil
}

// CompileError is a score compilation error with optional CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return &CompileError{Field: "cue", Message: firstErr.Error()}
}
