package leave

import "time"

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

// LeaveTypeAnnual is the only type the chat flow creates.
const LeaveTypeAnnual = "annual"

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  string

	StartDate time.Time
	EndDate   time.Time

	Status     LeaveRequestStatus
	ApprovedBy *string
	ApprovedAt *time.Time

	CreatedAt time.Time

	// Relationships (for replies)
	EmployeeUsername *string
}

// IsPending reports whether the request still awaits a decision.
func (r *LeaveRequest) IsPending() bool {
	return r.Status == LeaveRequestStatusPending
}
