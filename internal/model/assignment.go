package model

import "time"

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
)

// Assignment is one dated occurrence of a task. The (task_id, date) pair is
// unique; generation relies on that constraint for idempotency.
type Assignment struct {
	ID          int64            `json:"id"`
	TaskID      int64            `json:"task_id"`
	Date        time.Time        `json:"date"`
	ChildID     *int64           `json:"child_id"`
	Status      AssignmentStatus `json:"status"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
