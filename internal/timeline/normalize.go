package timeline

import "golang.org/x/text/unicode/norm"

// NormalizeText returns the NFC normalization of s. Rehearsal marks and
// notes are normalized before persistence so string equality and rendering
// are stable regardless of how the input was composed.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// NormalizeTextPtr normalizes an optional text field in place, preserving
// nil (absent/NULL) values.
func NormalizeTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	n := norm.NFC.String(*s)
	return &n
}
