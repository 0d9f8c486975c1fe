package models

// Task is a unit of sprint work as exported by the tracker.
// Timestamps are kept verbatim; nothing downstream parses them.
type Task struct {
	ID          string  `json:"task_id" yaml:"task_id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Status      string  `json:"status" yaml:"status"`
	CreatedAt   string  `json:"created_at" yaml:"created_at"`
	StartedAt   *string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Duration    string  `json:"duration" yaml:"duration"`
	Points      int     `json:"points" yaml:"points"`
}

// Sprint is a two-week work period and the tasks attempted in it.
type Sprint struct {
	ID    string `json:"sprint_id" yaml:"sprint_id"`
	Tasks []Task `json:"tasks" yaml:"tasks"`
}

// CompletedPoints sums the estimates of tasks that have a completion timestamp.
func (s Sprint) CompletedPoints() int {
	total := 0
	for _, t := range s.Tasks {
		if t.CompletedAt != nil {
			total += t.Points
		}
	}
	return total
}
