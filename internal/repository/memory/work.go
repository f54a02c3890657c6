package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
)

type leaveRequestRepository struct {
	store *Store
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[request.EmployeeID]; !ok {
		return leave.LeaveRequest{}, user.ErrUserNotFound
	}

	id, err := newID()
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	request.ID = id
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}
	request.CreatedAt = time.Now()
	request.EmployeeUsername = nil

	r.store.leaves[id] = request
	return request, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	lr, ok := r.store.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withUsernameLocked(lr), nil
}

func (r *leaveRequestRepository) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return r.list(func(lr leave.LeaveRequest) bool { return lr.EmployeeID == employeeID }), nil
}

func (r *leaveRequestRepository) GetPending(ctx context.Context) ([]leave.LeaveRequest, error) {
	return r.list(func(lr leave.LeaveRequest) bool { return lr.IsPending() }), nil
}

func (r *leaveRequestRepository) Approve(ctx context.Context, id, approvedBy string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lr, ok := r.store.leaves[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if !lr.IsPending() {
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	lr.Status = leave.LeaveRequestStatusApproved
	lr.ApprovedBy = &approvedBy
	lr.ApprovedAt = &at
	r.store.leaves[id] = lr
	return nil
}

func (r *leaveRequestRepository) list(pred func(leave.LeaveRequest) bool) []leave.LeaveRequest {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, lr := range r.store.leaves {
		if pred(lr) {
			out = append(out, r.withUsernameLocked(lr))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *leaveRequestRepository) withUsernameLocked(lr leave.LeaveRequest) leave.LeaveRequest {
	if u, ok := r.store.users[lr.EmployeeID]; ok {
		lr.EmployeeUsername = cloneString(u.Username)
	}
	return lr
}

type projectRepository struct {
	store *Store
}

func (r *projectRepository) Create(ctx context.Context, project task.Project) (task.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.projects {
		if p.Name == project.Name {
			return task.Project{}, task.ErrProjectNameExists
		}
	}
	if _, ok := r.store.users[project.ManagerID]; !ok {
		return task.Project{}, user.ErrUserNotFound
	}

	id, err := newID()
	if err != nil {
		return task.Project{}, err
	}
	project.ID = id
	project.CreatedAt = time.Now()
	r.store.projects[id] = project
	return project, nil
}

func (r *projectRepository) GetByName(ctx context.Context, name string) (task.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.projects {
		if p.Name == name {
			return p, nil
		}
	}
	return task.Project{}, task.ErrProjectNotFound
}

type taskRepository struct {
	store *Store
}

func (r *taskRepository) Create(ctx context.Context, t task.Task) (task.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.projects[t.ProjectID]; !ok {
		return task.Task{}, task.ErrProjectNotFound
	}
	if _, ok := r.store.users[t.AssignedTo]; !ok {
		return task.Task{}, user.ErrUserNotFound
	}

	id, err := newID()
	if err != nil {
		return task.Task{}, err
	}
	t.ID = id
	if t.Status == "" {
		t.Status = task.TaskStatusNotStarted
	}
	t.CreatedAt = time.Now()
	r.store.tasks[id] = t
	return t, nil
}

func (r *taskRepository) GetByAssignee(ctx context.Context, userID string) ([]task.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []task.Task
	for _, t := range r.store.tasks {
		if t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
