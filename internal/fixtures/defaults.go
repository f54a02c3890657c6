package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
)

// Defaults describes the records a fresh deployment needs before anyone can
// approve leave or assign tasks.
type Defaults struct {
	AdminPhone string
	AdminName  string
	Projects   []string
}

// SeededDataIDs holds IDs of the seeded default data
type SeededDataIDs struct {
	AdminID    string
	ProjectIDs map[string]string // e.g., "General" -> "uuid"
}

func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{ProjectIDs: make(map[string]string)}
}

// Seed creates the HR admin and the default projects. Records that already
// exist are reused, so running it on every start is safe. The admin has no
// credentials yet and signs up over chat like anyone else.
func Seed(ctx context.Context, users user.UserRepository, projects task.ProjectRepository, defaults Defaults, logger *slog.Logger) (*SeededDataIDs, error) {
	if defaults.AdminPhone == "" {
		return nil, errors.New("seed admin phone is required")
	}
	ids := NewSeededDataIDs()

	admin, err := users.Create(ctx, user.User{
		Phone:     defaults.AdminPhone,
		FirstName: defaults.AdminName,
		IsHR:      true,
		IsManager: true,
		IsActive:  true,
		Session:   user.AwaitingUsername{},
	})
	switch {
	case errors.Is(err, user.ErrPhoneTaken):
		admin, err = users.GetByPhone(ctx, defaults.AdminPhone)
		if err != nil {
			return nil, fmt.Errorf("load seeded admin: %w", err)
		}
		if !admin.IsHR {
			logger.Warn("Seed admin phone belongs to a non-HR user", "user_id", admin.ID)
		}
	case err != nil:
		return nil, fmt.Errorf("create seeded admin: %w", err)
	default:
		logger.Info("Seeded HR admin", "user_id", admin.ID)
	}
	ids.AdminID = admin.ID

	for _, name := range defaults.Projects {
		if name == "" {
			continue
		}
		project, err := projects.Create(ctx, task.Project{Name: name, ManagerID: admin.ID})
		if errors.Is(err, task.ErrProjectNameExists) {
			project, err = projects.GetByName(ctx, name)
		} else if err == nil {
			logger.Info("Seeded project", "project", name, "project_id", project.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("seed project %q: %w", name, err)
		}
		ids.ProjectIDs[name] = project.ID
	}

	return ids, nil
}
