package user

// Capability names an action gated by a role flag.
type Capability string

const (
	CapabilityApproveLeave Capability = "approve_leave"
	CapabilityAssignTasks  Capability = "assign_tasks"
)

// Capabilities lists every capability the bot recognises.
var Capabilities = []Capability{CapabilityApproveLeave, CapabilityAssignTasks}

// Can reports whether u holds capability c. Unknown capabilities are denied.
func Can(u *User, c Capability) bool {
	if u == nil {
		return false
	}
	switch c {
	case CapabilityApproveLeave:
		return u.IsHR
	case CapabilityAssignTasks:
		return u.IsManager
	}
	return false
}

// IsStaff reports whether the HR section is shown in the menu.
func (u *User) IsStaff() bool {
	return u.IsHR || u.IsManager
}
