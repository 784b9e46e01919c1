package domain

import "time"

// Task is one record of the task hierarchy the Gantt charts are built from.
// Negative IDs are reserved for ad-hoc chart nodes and never stored here.
type Task struct {
	ID                int64
	ParentID          *int64
	Title             string
	OrderIndex        int
	Duration          *float64 // working days
	StartDate         *time.Time
	EndDate           *time.Time
	PredecessorID     *int64
	PredecessorOffset int
	RelationType      RelationType
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsRoot reports whether the task has no parent.
func (t *Task) IsRoot() bool {
	return t.ParentID == nil
}
