package task

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Project entity
type Project struct {
	ID        string
	Name      string
	ManagerID string
	CreatedAt time.Time
}

// Task entity
type Task struct {
	ID          string
	ProjectID   string
	AssignedTo  string
	Description string
	DueDate     time.Time
	Status      TaskStatus
	CreatedAt   time.Time
}
