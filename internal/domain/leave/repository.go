package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	// GetPending returns pending requests oldest first, joined with the
	// employee username.
	GetPending(ctx context.Context) ([]LeaveRequest, error)
	// Approve marks a pending request approved. It returns
	// ErrLeaveRequestAlreadyProcessed when the request is no longer pending.
	Approve(ctx context.Context, id, approvedBy string, at time.Time) error
}
