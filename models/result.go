package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OneOrMany holds a field the model may answer with either a single string
// or a list of strings. It re-encodes in the shape it was decoded from.
type OneOrMany struct {
	values []string
	many   bool
}

// One wraps a single string.
func One(s string) OneOrMany {
	return OneOrMany{values: []string{s}}
}

// Many wraps a list of strings.
func Many(ss ...string) OneOrMany {
	return OneOrMany{values: append([]string{}, ss...), many: true}
}

// IsList reports whether the value came from (or encodes as) a JSON array.
func (o OneOrMany) IsList() bool { return o.many }

// Values returns a copy of the underlying strings.
func (o OneOrMany) Values() []string {
	return append([]string{}, o.values...)
}

// String joins list values with newlines.
func (o OneOrMany) String() string {
	return strings.Join(o.values, "\n")
}

// Equal reports whether both values have the same shape and contents.
func (o OneOrMany) Equal(other OneOrMany) bool {
	if o.many != other.many || len(o.values) != len(other.values) {
		return false
	}
	for i := range o.values {
		if o.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (o OneOrMany) MarshalJSON() ([]byte, error) {
	if o.many {
		return json.Marshal(o.Values())
	}
	if len(o.values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(o.values[0])
}

// UnmarshalJSON accepts a JSON string or an array of JSON strings.
// null, numbers, booleans, objects and mixed arrays are rejected.
func (o *OneOrMany) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*o = One(s)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		values := make([]string, 0, len(raw))
		for i, item := range raw {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '"' {
				return fmt.Errorf("element %d is not a string", i)
			}
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			values = append(values, s)
		}
		*o = Many(values...)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %s", jsonKind(trimmed[0]))
	}
}

// MarshalYAML implements yaml.Marshaler.
func (o OneOrMany) MarshalYAML() (interface{}, error) {
	if o.many {
		return o.Values(), nil
	}
	return o.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OneOrMany) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return fmt.Errorf("line %d: expected string, got %s", node.Line, node.ShortTag())
		}
		*o = One(node.Value)
		return nil
	case yaml.SequenceNode:
		values := make([]string, 0, len(node.Content))
		for i, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return fmt.Errorf("line %d: element %d is not a string", item.Line, i)
			}
			values = append(values, item.Value)
		}
		*o = Many(values...)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

func jsonKind(first byte) string {
	switch first {
	case '{':
		return "object"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

// PerformanceResult is the structured review returned by the model.
// The desc tags feed the format instructions embedded in the prompt.
type PerformanceResult struct {
	SprintID                     string    `json:"sprint_id" yaml:"sprint_id" desc:"identifier of the evaluated sprint"`
	PerformanceSummary           OneOrMany `json:"performance_summary" yaml:"performance_summary" desc:"overall summary of the employee's performance"`
	HighLighting                 OneOrMany `json:"high_lighting" yaml:"high_lighting" desc:"notable achievements during the sprint"`
	StrengthsAreasForImprovement OneOrMany `json:"strengths_areas_for_improvement" yaml:"strengths_areas_for_improvement" desc:"strengths and areas for improvement"`
	CanBeLaidOff                 OneOrMany `json:"can_be_laid_off" yaml:"can_be_laid_off" desc:"reason the employee can or cannot be laid off"`
}
