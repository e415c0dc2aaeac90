package core

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrFieldCount         = errors.New("field count")
	ErrDateFormat         = errors.New("date format")
	ErrDateRange          = errors.New("date range")
	ErrDuplicateDate      = errors.New("duplicate date")
	ErrNumericFormat      = errors.New("numeric format")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrInvalidProjectCost = errors.New("invalid project cost")
)

// ValidationError reports which check rejected a raw input and the value it
// rejected.
type ValidationError struct {
	Kind  error
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s (got %q)", e.Kind, e.Msg, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// MalformedRecordError is returned when a stored row cannot be turned into a
// DailyRecord. Position is the zero-based index of the row in the input.
type MalformedRecordError struct {
	Position int
	Value    string
	Err      error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at position %d (%q): %v", e.Position, e.Value, e.Err)
}

func (e *MalformedRecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}
