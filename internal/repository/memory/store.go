package memory

import (
	"fmt"
	"sync"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/google/uuid"
)

// Store keeps every record in process memory. It backs DB_DRIVER=memory and
// the service tests.
type Store struct {
	mu       sync.RWMutex
	users    map[string]user.User
	leaves   map[string]leave.LeaveRequest
	projects map[string]task.Project
	tasks    map[string]task.Task
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]user.User),
		leaves:   make(map[string]leave.LeaveRequest),
		projects: make(map[string]task.Project),
		tasks:    make(map[string]task.Task),
	}
}

func (s *Store) Users() user.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) LeaveRequests() leave.LeaveRequestRepository {
	return &leaveRequestRepository{store: s}
}

func (s *Store) Projects() task.ProjectRepository {
	return &projectRepository{store: s}
}

func (s *Store) Tasks() task.TaskRepository {
	return &taskRepository{store: s}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
