package params

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every validation failure.
var ErrValidation = errors.New("params: validation failed")

// Validation failure reasons.
var (
	ErrQueryRequired      = errors.New("params: query is required")
	ErrDangerousInput     = errors.New("params: dangerous pattern detected")
	ErrInputTooLong       = errors.New("params: input too long")
	ErrTooManyValues      = errors.New("params: too many values")
	ErrOutOfRange         = errors.New("params: value out of range")
	ErrInvalidSort        = errors.New("params: invalid sort directive")
	ErrInvalidDateRange   = errors.New("params: date_from is after date_to")
	ErrNoValidIDs         = errors.New("params: no valid object ids")
	ErrInvalidInstitution = errors.New("params: invalid institution id")
	ErrInvalidAsset       = errors.New("params: invalid asset id")
)

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("params: %s: %v", e.Field, e.Err)
}

// Unwrap exposes both ErrValidation and the specific reason.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
