package review

import "fmt"

// GenerationError reports a failed call to the completion backend:
// unreachable server, timeout, backend-side error or an empty reply.
// It is never retried.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed (model %s): %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ResponseParseError reports model output that is not a JSON object matching
// the PerformanceResult schema. Raw holds the unmodified model text.
type ResponseParseError struct {
	Raw   string
	Field string // empty when the text is not JSON at all
	Err   error
}

func (e *ResponseParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid model output: %v", e.Err)
	}
	return fmt.Sprintf("invalid model output: field '%s': %v", e.Field, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }
