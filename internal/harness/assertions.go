package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails. It includes the
// final timeline positions for debugging context.
type AssertionError struct {
	Type      string
	Expected  string
	Actual    string
	Positions []int
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "  Final positions: %v\n", e.Positions)
	return buf.String()
}

// assertResult checks one assertion against a captured result.
func assertResult(result *Result, a Assertion) error {
	positions := make([]int, len(result.Beats))
	nonSentinel := 0
	for i, b := range result.Beats {
		positions[i] = b.Position
		if !b.IsSentinel() {
			nonSentinel++
		}
	}

	switch a.Type {
	case "beat_count":
		if nonSentinel != a.Count {
			return &AssertionError{
				Type:      a.Type,
				Expected:  fmt.Sprintf("%d beats", a.Count),
				Actual:    fmt.Sprintf("%d beats", nonSentinel),
				Positions: positions,
			}
		}

	case "measure_count":
		if len(result.Measures) != a.Count {
			return &AssertionError{
				Type:      a.Type,
				Expected:  fmt.Sprintf("%d measures", a.Count),
				Actual:    fmt.Sprintf("%d measures", len(result.Measures)),
				Positions: positions,
			}
		}

	case "positions":
		if !equalInts(positions, a.Positions) {
			return &AssertionError{
				Type:      a.Type,
				Expected:  fmt.Sprintf("%v", a.Positions),
				Actual:    fmt.Sprintf("%v", positions),
				Positions: positions,
			}
		}

	case "history_len":
		if len(result.History) != a.Count {
			return &AssertionError{
				Type:      a.Type,
				Expected:  fmt.Sprintf("%d history entries", a.Count),
				Actual:    fmt.Sprintf("%d entries (%v)", len(result.History), result.History),
				Positions: positions,
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
