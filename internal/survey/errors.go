package survey

import "fmt"

// MissingFieldError is returned when a record lacks a required column.
type MissingFieldError struct {
	Row   int // zero-based record index
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record %d: missing field '%s'", e.Row, e.Field)
}

// EmptyReadingsError is returned when no configured access point produced a
// value for a record, so the metric cannot be derived.
type EmptyReadingsError struct {
	Row int
}

func (e *EmptyReadingsError) Error() string {
	return fmt.Sprintf("record %d: no access point readings to aggregate", e.Row)
}

// InvalidValueError is returned when a required field holds a value that is
// not a number or is out of range.
type InvalidValueError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *InvalidValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("record %d: invalid value '%s' in field '%s': %s", e.Row, e.Value, e.Field, e.Err)
	}
	return fmt.Sprintf("record %d: invalid value '%s' in field '%s'", e.Row, e.Value, e.Field)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}
