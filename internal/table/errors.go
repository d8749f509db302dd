package table

// errors.go defines the error taxonomy shared by all cleaning stages.
//
// Each kind has a sentinel for errors.Is and a typed error carrying detail
// for errors.As. Error strings contain stable phrases ("column not found",
// "invalid policy", "cannot convert") that the user-message mapper keys on.

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is returned when a stage references a column the table does not have.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidPolicy is returned for an unrecognized or incomplete stage configuration.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrTypeCoercion is returned when a value cannot be converted to the type a stage requires.
	ErrTypeCoercion = errors.New("type coercion failed")
)

// ColumnNotFoundError names the missing column.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %q", e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// PolicyError describes a rejected stage configuration.
type PolicyError struct {
	Stage  string // Stage that rejected the configuration
	Value  string // Offending value, if any
	Reason string
}

func (e *PolicyError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: invalid policy %q: %s", e.Stage, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s: invalid policy: %s", e.Stage, e.Reason)
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrInvalidPolicy
}

// CoercionError identifies the cell that could not be converted.
type CoercionError struct {
	Column string
	Row    int // Zero-based row index, -1 when not tied to a row
	Value  string
	Target string // "number", "date", ...
}

func (e *CoercionError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("column %q row %d: cannot convert %q to %s", e.Column, e.Row, e.Value, e.Target)
	}
	return fmt.Sprintf("column %q: cannot convert %q to %s", e.Column, e.Value, e.Target)
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrTypeCoercion
}

// NotFound is a shorthand for constructing a ColumnNotFoundError.
func NotFound(column string) error {
	return &ColumnNotFoundError{Column: column}
}
