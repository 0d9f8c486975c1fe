package models

// MeetingNote is one discussion topic from a 1-on-1.
type MeetingNote struct {
	Topic      string `json:"topic" yaml:"topic"`
	Discussion string `json:"discussion" yaml:"discussion"`
}

// Meeting is a manager/employee 1-on-1 record.
type Meeting struct {
	EmployeeID string        `json:"employee_id" yaml:"employee_id"`
	Date       string        `json:"date" yaml:"date"`
	Notes      []MeetingNote `json:"notes" yaml:"notes"`
}
