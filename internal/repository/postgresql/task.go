package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/database"
	"github.com/google/uuid"
)

const (
	tasksProjectFKey  = "tasks_project_id_fkey"
	tasksAssigneeFKey = "tasks_assigned_to_fkey"
)

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

// Create implements task.TaskRepository.
func (r *taskRepositoryImpl) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return task.Task{}, fmt.Errorf("generate task id: %w", err)
	}
	if t.Status == "" {
		t.Status = task.TaskStatusNotStarted
	}

	query := `
		INSERT INTO tasks (id, project_id, assigned_to, description, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	err = q.QueryRow(ctx, query,
		id.String(),
		t.ProjectID,
		t.AssignedTo,
		t.Description,
		t.DueDate,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		switch {
		case isForeignKeyViolation(err, tasksProjectFKey):
			return task.Task{}, task.ErrProjectNotFound
		case isForeignKeyViolation(err, tasksAssigneeFKey):
			return task.Task{}, user.ErrUserNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// GetByAssignee implements task.TaskRepository.
func (r *taskRepositoryImpl) GetByAssignee(ctx context.Context, userID string) ([]task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, project_id, assigned_to, description, due_date, status, created_at
		FROM tasks
		WHERE assigned_to = $1
		ORDER BY due_date, id
	`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.AssignedTo,
			&t.Description,
			&t.DueDate,
			&t.Status,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
