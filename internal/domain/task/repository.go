package task

import "context"

type ProjectRepository interface {
	Create(ctx context.Context, project Project) (Project, error)
	GetByName(ctx context.Context, name string) (Project, error)
}

type TaskRepository interface {
	Create(ctx context.Context, task Task) (Task, error)
	// GetByAssignee lists tasks assigned to userID, earliest due first.
	GetByAssignee(ctx context.Context, userID string) ([]Task, error)
}
