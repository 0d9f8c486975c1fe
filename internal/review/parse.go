package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/SprintReview/models"
)

var errMissingField = errors.New("field is required")

// ParseResult decodes raw model text into a PerformanceResult.
//
// Markdown code fences and text around the first JSON object are tolerated;
// the object itself is validated field by field and never repaired.
func ParseResult(raw string) (models.PerformanceResult, error) {
	var result models.PerformanceResult

	body := extractJSONObject(raw)
	if body == "" {
		return result, &ResponseParseError{Raw: raw, Err: errors.New("no JSON object found in response")}
	}

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&fields); err != nil {
		return result, &ResponseParseError{Raw: raw, Err: fmt.Errorf("parse JSON: %w", err)}
	}

	sprintID, ok := fields["sprint_id"]
	if !ok {
		return result, &ResponseParseError{Raw: raw, Field: "sprint_id", Err: errMissingField}
	}
	if err := decodeString(sprintID, &result.SprintID); err != nil {
		return result, &ResponseParseError{Raw: raw, Field: "sprint_id", Err: err}
	}

	content := []struct {
		name   string
		target *models.OneOrMany
	}{
		{"performance_summary", &result.PerformanceSummary},
		{"high_lighting", &result.HighLighting},
		{"strengths_areas_for_improvement", &result.StrengthsAreasForImprovement},
		{"can_be_laid_off", &result.CanBeLaidOff},
	}
	for _, c := range content {
		value, ok := fields[c.name]
		if !ok {
			return models.PerformanceResult{}, &ResponseParseError{Raw: raw, Field: c.name, Err: errMissingField}
		}
		if err := c.target.UnmarshalJSON(value); err != nil {
			return models.PerformanceResult{}, &ResponseParseError{Raw: raw, Field: c.name, Err: err}
		}
	}

	return result, nil
}

func decodeString(value json.RawMessage, target *string) error {
	trimmed := strings.TrimSpace(string(value))
	if !strings.HasPrefix(trimmed, `"`) {
		return fmt.Errorf("expected string, got %s", trimmed)
	}
	return json.Unmarshal([]byte(trimmed), target)
}

// extractJSONObject strips a leading markdown fence, if any, and returns the
// text from the first '{'. Fences after the object start belong to trailing
// prose. The decoder stops at the end of the first value, so that prose is
// ignored.
func extractJSONObject(raw string) string {
	text := strings.TrimSpace(raw)
	brace := strings.IndexByte(text, '{')
	if start := strings.Index(text, "```"); start >= 0 && (brace < 0 || start < brace) {
		rest := text[start+3:]
		// Drop the info string (```json).
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		text = strings.TrimSpace(rest)
		brace = strings.IndexByte(text, '{')
	}
	if brace < 0 {
		return ""
	}
	return text[brace:]
}
