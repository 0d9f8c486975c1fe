package loader

import "fmt"

// ValidationError reports input that does not match the sprint or meeting
// schema. Field is empty when the document could not be decoded at all.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on field '%s': %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }
