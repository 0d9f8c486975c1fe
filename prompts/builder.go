package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/josephgoksu/SprintReview/models"
)

// ReviewData is the value PerformanceReviewPrompt is rendered with.
type ReviewData struct {
	SprintID           string
	Tasks              string
	MeetingNotes       string
	FormatInstructions string
}

// Builder renders the review prompt. It holds no per-call state and is safe
// for concurrent use.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder parses templateText as a text/template over ReviewData.
func NewBuilder(templateText string) (*Builder, error) {
	tmpl, err := template.New(string(KeyPerformanceReview)).Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// DefaultBuilder returns a Builder over PerformanceReviewPrompt.
func DefaultBuilder() *Builder {
	b, err := NewBuilder(PerformanceReviewPrompt)
	if err != nil {
		panic(err)
	}
	return b
}

// Data flattens sprint and meeting into template values.
func (b *Builder) Data(sprint models.Sprint, meeting models.Meeting) ReviewData {
	return ReviewData{
		SprintID:           sprint.ID,
		Tasks:              FormatTasks(sprint.Tasks),
		MeetingNotes:       FormatNotes(meeting.Notes),
		FormatInstructions: FormatInstructions(),
	}
}

// Build renders the prompt for sprint and meeting.
func (b *Builder) Build(sprint models.Sprint, meeting models.Meeting) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, b.Data(sprint, meeting)); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// FormatTasks renders one "- {title}: {status} ({duration})" line per task.
func FormatTasks(tasks []models.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", t.Title, t.Status, t.Duration))
	}
	return strings.Join(lines, "\n")
}

// FormatNotes renders one "- {topic}: {discussion}" line per note.
func FormatNotes(notes []models.MeetingNote) string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("- %s: %s", n.Topic, n.Discussion))
	}
	return strings.Join(lines, "\n")
}

var oneOrManyType = reflect.TypeOf(models.OneOrMany{})

// FormatInstructions describes the PerformanceResult JSON schema, derived
// from the struct's json and desc tags, in field order.
func FormatInstructions() string {
	rt := reflect.TypeOf(models.PerformanceResult{})

	properties := make([]string, 0, rt.NumField())
	required := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		prop := map[string]interface{}{"title": name}
		if desc := f.Tag.Get("desc"); desc != "" {
			prop["description"] = desc
		}
		if f.Type == oneOrManyType {
			prop["anyOf"] = []interface{}{
				map[string]string{"type": "string"},
				map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
			}
		} else {
			prop["type"] = "string"
		}
		encoded, _ := json.Marshal(prop)
		nameJSON, _ := json.Marshal(name)
		properties = append(properties, fmt.Sprintf("%s: %s", nameJSON, encoded))
		required = append(required, string(nameJSON))
	}

	schema := fmt.Sprintf(`{"properties": {%s}, "required": [%s]}`,
		strings.Join(properties, ", "), strings.Join(required, ", "))

	var sb strings.Builder
	sb.WriteString("The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n")
	sb.WriteString("Fields whose schema is anyOf string/array accept either a single string or a list of strings.\n")
	sb.WriteString("Return only the JSON object, with every required field present.\n\n")
	sb.WriteString("Here is the output schema:\n```\n")
	sb.WriteString(schema)
	sb.WriteString("\n```")
	return sb.String()
}
