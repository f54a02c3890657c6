package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	projectsNameKey     = "projects_name_key"
	projectsManagerFKey = "projects_manager_id_fkey"
)

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) task.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

// Create implements task.ProjectRepository.
func (r *projectRepositoryImpl) Create(ctx context.Context, project task.Project) (task.Project, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return task.Project{}, fmt.Errorf("generate project id: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, manager_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`
	err = q.QueryRow(ctx, query, id.String(), project.Name, project.ManagerID).Scan(&project.ID, &project.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err, projectsNameKey):
			return task.Project{}, task.ErrProjectNameExists
		case isForeignKeyViolation(err, projectsManagerFKey):
			return task.Project{}, user.ErrUserNotFound
		}
		return task.Project{}, err
	}

	return project, nil
}

// GetByName implements task.ProjectRepository.
func (r *projectRepositoryImpl) GetByName(ctx context.Context, name string) (task.Project, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, name, manager_id, created_at FROM projects WHERE name = $1`

	var p task.Project
	err := q.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.ManagerID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Project{}, task.ErrProjectNotFound
		}
		return task.Project{}, err
	}
	return p, nil
}
