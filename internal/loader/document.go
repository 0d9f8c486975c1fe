package loader

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/josephgoksu/SprintReview/models"
)

// Documents mirror the models with pointer fields so that a missing key can
// be told apart from a zero value.

type taskDocument struct {
	TaskID      *string `json:"task_id" validate:"required,min=1"`
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Status      *string `json:"status" validate:"required"`
	CreatedAt   *string `json:"created_at" validate:"required"`
	StartedAt   *string `json:"started_at"`
	CompletedAt *string `json:"completed_at"`
	Duration    *string `json:"duration" validate:"required"`
	Points      *int    `json:"points" validate:"required,gte=0"`
}

type sprintDocument struct {
	SprintID *string        `json:"sprint_id" validate:"required,min=1"`
	Tasks    []taskDocument `json:"tasks" validate:"required,dive"`
}

type meetingNoteDocument struct {
	Topic      *string `json:"topic" validate:"required"`
	Discussion *string `json:"discussion" validate:"required"`
}

type meetingDocument struct {
	EmployeeID *string               `json:"employee_id" validate:"required"`
	Date       *string               `json:"date" validate:"required"`
	Notes      []meetingNoteDocument `json:"notes" validate:"required,dive"`
}

// UnmarshalJSON decodes tasks one by one so type errors carry the element
// index, e.g. tasks[0].points.
func (d *sprintDocument) UnmarshalJSON(data []byte) error {
	var raw struct {
		SprintID *string           `json:"sprint_id"`
		Tasks    []json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tasks, err := decodeElements[taskDocument]("tasks", raw.Tasks)
	if err != nil {
		return err
	}
	d.SprintID, d.Tasks = raw.SprintID, tasks
	return nil
}

// UnmarshalJSON decodes notes one by one, like sprintDocument.
func (d *meetingDocument) UnmarshalJSON(data []byte) error {
	var raw struct {
		EmployeeID *string           `json:"employee_id"`
		Date       *string           `json:"date"`
		Notes      []json.RawMessage `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	notes, err := decodeElements[meetingNoteDocument]("notes", raw.Notes)
	if err != nil {
		return err
	}
	d.EmployeeID, d.Date, d.Notes = raw.EmployeeID, raw.Date, notes
	return nil
}

// decodeElements keeps a nil list nil so "required" still reports it.
func decodeElements[T any](field string, raw []json.RawMessage) ([]T, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]T, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			var typeErr *json.UnmarshalTypeError
			if !errors.As(err, &typeErr) {
				return nil, err
			}
			path := fmt.Sprintf("%s[%d]", field, i)
			if typeErr.Field != "" {
				path += "." + typeErr.Field
			}
			return nil, &json.UnmarshalTypeError{
				Value:  typeErr.Value,
				Type:   typeErr.Type,
				Offset: typeErr.Offset,
				Struct: typeErr.Struct,
				Field:  path,
			}
		}
	}
	return out, nil
}

func (d *sprintDocument) model() models.Sprint {
	tasks := make([]models.Task, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		tasks = append(tasks, models.Task{
			ID:          *t.TaskID,
			Title:       *t.Title,
			Description: *t.Description,
			Status:      *t.Status,
			CreatedAt:   *t.CreatedAt,
			StartedAt:   t.StartedAt,
			CompletedAt: t.CompletedAt,
			Duration:    *t.Duration,
			Points:      *t.Points,
		})
	}
	return models.Sprint{ID: *d.SprintID, Tasks: tasks}
}

func (d *meetingDocument) model() models.Meeting {
	notes := make([]models.MeetingNote, 0, len(d.Notes))
	for _, n := range d.Notes {
		notes = append(notes, models.MeetingNote{Topic: *n.Topic, Discussion: *n.Discussion})
	}
	return models.Meeting{EmployeeID: *d.EmployeeID, Date: *d.Date, Notes: notes}
}
