package score

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load reads a score from a CUE file or a directory of CUE files.
//
// The top-level value must carry a "score" field. Directories are loaded
// as one CUE instance, so a score can be split across files that unify.
func Load(path string) (*Score, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("score path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("accessing score path: %w", err)
	}

	ctx := cuecontext.New()
	var value cue.Value

	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, fmt.Errorf("no CUE instances in %s", path)
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, formatCUEError(inst.Err)
		}
		value = ctx.BuildInstance(inst)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading score file: %w", err)
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	scoreVal := value.LookupPath(cue.ParsePath("score"))
	if !scoreVal.Exists() {
		return nil, &CompileError{
			Field:   "score",
			Message: fmt.Sprintf("no score found in %s", path),
			Pos:     value.Pos(),
		}
	}
	return CompileScore(scoreVal)
}
