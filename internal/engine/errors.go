package engine

import (
	"errors"
	"fmt"
)

// ValidationError represents a rejected operation. The operation aborts
// before any write, nothing is persisted, and no history entry is recorded.
//
// Validation errors include:
//   - Shift pivot at the sentinel: startingPosition <= 0
//   - Shift below minimum: a move would drive a beat position below 1
//   - Measure not found: an update batch targets a missing identity
//   - Invalid tempo group: out-of-range tempo, beat count, or repeats
//   - Invalid position: an explicit starting position below 1
type ValidationError struct {
	// Code identifies the error category.
	Code ValidationErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode string

const (
	// ErrCodeShiftPivotReserved indicates a shift at or through the sentinel.
	ErrCodeShiftPivotReserved ValidationErrorCode = "SHIFT_PIVOT_RESERVED"

	// ErrCodeShiftBelowMinimum indicates a shift would push a beat below position 1.
	ErrCodeShiftBelowMinimum ValidationErrorCode = "SHIFT_BELOW_MINIMUM"

	// ErrCodeMeasureNotFound indicates an update targeted a missing measure.
	ErrCodeMeasureNotFound ValidationErrorCode = "MEASURE_NOT_FOUND"

	// ErrCodeInvalidTempoGroup indicates tempo group bounds were violated.
	ErrCodeInvalidTempoGroup ValidationErrorCode = "INVALID_TEMPO_GROUP"

	// ErrCodeInvalidPosition indicates an explicit position below 1.
	ErrCodeInvalidPosition ValidationErrorCode = "INVALID_POSITION"

	// ErrCodeInvalidDuration indicates a negative beat duration.
	ErrCodeInvalidDuration ValidationErrorCode = "INVALID_DURATION"
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsValidationError returns true if the error is any validation rejection.
// Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMeasureNotFound returns true if the error is a measure-not-found
// rejection. Uses errors.As to handle wrapped errors.
func IsMeasureNotFound(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeMeasureNotFound
	}
	return false
}

// NewShiftPivotError creates a ValidationError for a shift pivot at or
// below the sentinel position.
func NewShiftPivotError(startingPosition int) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeShiftPivotReserved,
		Message: "shift starting position must be greater than 0 (the sentinel never moves)",
		Details: map[string]string{
			"starting_position": fmt.Sprintf("%d", startingPosition),
		},
	}
}

// NewShiftBelowMinimumError creates a ValidationError for a shift that
// would push an affected beat below position 1.
func NewShiftBelowMinimumError(minAffected, shiftAmount int) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeShiftBelowMinimum,
		Message: fmt.Sprintf("shift by %d would move a beat from position %d below 1", shiftAmount, minAffected),
		Details: map[string]string{
			"min_affected_position": fmt.Sprintf("%d", minAffected),
			"shift_amount":          fmt.Sprintf("%d", shiftAmount),
		},
	}
}

// NewMeasureNotFoundError creates a ValidationError for an update batch
// that targets a missing measure identity.
func NewMeasureNotFoundError(id int64) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeMeasureNotFound,
		Message: fmt.Sprintf("measure %d does not exist", id),
		Details: map[string]string{
			"measure_id": fmt.Sprintf("%d", id),
		},
	}
}
