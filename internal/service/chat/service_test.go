package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/repository/memory"
	authsvc "github.com/cmlabs-hris/hris-whatsapp-bot/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	store *memory.Store
	users user.UserRepository
	svc   *ChatServiceImpl
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	users := store.Users()
	svc := NewChatService(
		users,
		store.LeaveRequests(),
		store.Projects(),
		store.Tasks(),
		authsvc.NewAuthService(users, logger.Discard(), 5),
		logger.Discard(),
		30*time.Minute,
	).(*ChatServiceImpl)
	return &harness{store: store, users: users, svc: svc}
}

func (h *harness) send(t *testing.T, phone, body string) string {
	t.Helper()
	reply, err := h.svc.HandleMessage(context.Background(), chat.InboundMessage{
		From: chat.WhatsAppPrefix + phone,
		Body: body,
	})
	require.NoError(t, err)
	return reply
}

// member creates an already authenticated user.
func (h *harness) member(t *testing.T, phone, username string, roles ...func(*user.User)) user.User {
	t.Helper()
	hash := "hash"
	u := user.User{
		Phone:        phone,
		Username:     &username,
		PasswordHash: &hash,
		IsActive:     true,
		Session:      user.Authenticated{},
	}
	for _, role := range roles {
		role(&u)
	}
	created, err := h.users.Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func asHR(u *user.User)      { u.IsHR = true }
func asManager(u *user.User) { u.IsManager = true }

func (h *harness) get(t *testing.T, id string) user.User {
	t.Helper()
	u, err := h.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func TestHandleMessage_FirstContactCreatesUser(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, "+15550001111", "al")
	assert.Equal(t, "❌ Username must be 3+ characters", reply)

	u, err := h.users.GetByPhone(context.Background(), "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, user.AwaitingUsername{}, u.Session)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.Username)

	h.send(t, "+15550001111", "al")
	again, err := h.users.GetByPhone(context.Background(), "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
}

func TestHandleMessage_SignupThenMenu(t *testing.T) {
	h := newHarness(t)
	phone := "+15550001111"

	assert.Equal(t, "🔒 Please enter your password (8+ chars with a number)", h.send(t, phone, "alice"))
	assert.Equal(t, "❌ Password must contain a number", h.send(t, phone, "password"))
	assert.Equal(t, "👋 Welcome alice! Type 'menu' for options", h.send(t, phone, "password1"))
	assert.Contains(t, h.send(t, phone, "menu"), "📋 Main Menu:")
}

func TestHandleMessage_MissingSender(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.HandleMessage(context.Background(), chat.InboundMessage{From: "whatsapp:", Body: "hi"})

	assert.Error(t, err)
}

func TestHandleMessage_IdleSessionExpires(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.member(t, "+15550001111", "alice")
	require.NoError(t, h.users.TouchActivity(ctx, alice.ID, time.Now().Add(-31*time.Minute)))

	reply := h.send(t, "+15550001111", "menu")

	assert.Equal(t, "🔒 Please enter your password (8+ chars with a number)", reply)
	got := h.get(t, alice.ID)
	assert.Equal(t, user.AwaitingPassword{StagedUsername: "menu"}, got.Session)
	require.NotNil(t, got.Username)
	assert.Equal(t, "alice", *got.Username)
}

func TestHandleMessage_ActiveSessionKept(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.member(t, "+15550001111", "alice")
	require.NoError(t, h.users.TouchActivity(ctx, alice.ID, time.Now().Add(-29*time.Minute)))

	assert.Equal(t, "👋 Hello alice! How can I help?", h.send(t, "+15550001111", "hello"))
	assert.WithinDuration(t, time.Now(), h.get(t, alice.ID).LastActivity, time.Minute)
}

func TestRoute_Commands(t *testing.T) {
	h := newHarness(t)
	h.member(t, "+15550001111", "alice")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"greeting", "Hi", "👋 Hello alice! How can I help?"},
		{"set name", "my name is john smith", "👍 I'll call you John Smith from now on!"},
		{"unknown", "what's up", "🤔 I didn't understand. Send 'menu' for options."},
		{"leave help", "leave", replyLeaveHelp},
		{"task help", "tasks", replyTaskHelp},
		{"profile help", "update", replyProfileHelp},
		{"keyword inside word", "unleavened bread", "🤔 I didn't understand. Send 'menu' for options."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.send(t, "+15550001111", tt.body))
		})
	}
}

func TestRoute_SetNameStoresTitleCase(t *testing.T) {
	h := newHarness(t)
	alice := h.member(t, "+15550001111", "alice")

	h.send(t, "+15550001111", "my name is aLICE cooper")

	assert.Equal(t, "Alice Cooper", h.get(t, alice.ID).FirstName)
}

func TestRoute_Menu(t *testing.T) {
	h := newHarness(t)
	h.member(t, "+15550001111", "alice")
	h.member(t, "+15550002222", "boss", asManager)

	plain := h.send(t, "+15550001111", "MENU")
	staff := h.send(t, "+15550002222", "menu")

	assert.Equal(t, "📋 Main Menu:\n"+
		"• Leave requests (type 'leave')\n"+
		"• Task management (type 'task')\n"+
		"• Update profile (type 'update')\n"+
		"• Logout (type 'logout')", plain)
	assert.Contains(t, staff, "• HR functions (type 'hr')\n")
}

func TestRoute_Logout(t *testing.T) {
	h := newHarness(t)
	alice := h.member(t, "+15550001111", "alice")

	assert.Equal(t, replyLoggedOut, h.send(t, "+15550001111", "logout"))
	got := h.get(t, alice.ID)
	assert.Equal(t, user.AwaitingUsername{}, got.Session)
	assert.NotNil(t, got.Username)
}

func TestLeave_Apply(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.member(t, "+15550001111", "alice")

	reply := h.send(t, "+15550001111", "apply leave 01-01-2025 to 05-01-2025")

	assert.Equal(t, replyLeaveSubmitted, reply)
	requests, err := h.store.LeaveRequests().GetByEmployeeID(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, leave.LeaveTypeAnnual, requests[0].LeaveType)
	assert.Equal(t, leave.LeaveRequestStatusPending, requests[0].Status)
	assert.Equal(t, "01-01-2025", requests[0].StartDate.Format("02-01-2006"))
	assert.Equal(t, "05-01-2025", requests[0].EndDate.Format("02-01-2006"))
}

func TestLeave_ApplyFormatErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.member(t, "+15550001111", "alice")

	tests := []string{
		"apply leave 01-01-2025",
		"apply leave 01-01-2025 to 05-01-2025 and 07-01-2025",
		"apply leave 31-02-2025 to 05-03-2025",
		"apply leave 05-01-2025 to 01-01-2025",
	}

	for _, body := range tests {
		t.Run(body, func(t *testing.T) {
			assert.Equal(t, replyLeaveFormat, h.send(t, "+15550001111", body))
		})
	}

	requests, err := h.store.LeaveRequests().GetByEmployeeID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestLeave_Approve(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.member(t, "+15550001111", "alice")
	hr := h.member(t, "+15550002222", "hana", asHR)

	assert.Equal(t, replyNoPendingLeaves, h.send(t, "+15550002222", "approve leave"))

	h.send(t, "+15550001111", "apply leave 01-01-2025 to 05-01-2025")
	pending, err := h.store.LeaveRequests().GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].ID

	assert.Equal(t, "📋 Pending leave requests:\n- "+id+": alice 01-01-2025 to 05-01-2025",
		h.send(t, "+15550002222", "approve leave"))

	assert.Equal(t, replyLeaveHelp, h.send(t, "+15550001111", "approve leave "+id))
	assert.Equal(t, replyLeaveApproved, h.send(t, "+15550002222", "approve leave "+id))
	assert.Equal(t, replyLeaveAlreadyProcessed, h.send(t, "+15550002222", "approve leave "+id))
	assert.Equal(t, replyLeaveNotFound, h.send(t, "+15550002222", "approve leave 12345"))

	approved, err := h.store.LeaveRequests().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, hr.ID, *approved.ApprovedBy)
}

func TestLeave_MyLeaves(t *testing.T) {
	h := newHarness(t)
	h.member(t, "+15550001111", "alice")

	assert.Equal(t, replyNoLeaves, h.send(t, "+15550001111", "my leaves"))

	h.send(t, "+15550001111", "apply leave 01-01-2025 to 05-01-2025")
	assert.Equal(t, "📅 Your leave requests:\n- 01-01-2025 to 05-01-2025 (pending)",
		h.send(t, "+15550001111", "My Leaves"))
}

func setupProject(t *testing.T, h *harness, managerID string) task.Project {
	t.Helper()
	p, err := h.store.Projects().Create(context.Background(), task.Project{Name: "ProjectX", ManagerID: managerID})
	require.NoError(t, err)
	return p
}

func TestTask_Assign(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.member(t, "+15550001111", "alice")
	boss := h.member(t, "+15550002222", "boss", asManager)
	project := setupProject(t, h, boss.ID)

	reply := h.send(t, "+15550002222", "assign task ProjectX to alice: fix bug due 10-01-2025")

	assert.Equal(t, "✅ Task assigned to alice", reply)
	tasks, err := h.store.Tasks().GetByAssignee(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, project.ID, tasks[0].ProjectID)
	assert.Equal(t, "fix bug", tasks[0].Description)
	assert.Equal(t, "10-01-2025", tasks[0].DueDate.Format("02-01-2006"))
	assert.Equal(t, task.TaskStatusNotStarted, tasks[0].Status)
}

func TestTask_AssignFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.member(t, "+15550001111", "alice")
	boss := h.member(t, "+15550002222", "boss", asManager)
	setupProject(t, h, boss.ID)

	tests := []struct {
		name  string
		phone string
		body  string
		want  string
	}{
		{"unknown user", "+15550002222", "assign task ProjectX to bob: fix bug due 10-01-2025", replyTaskError},
		{"unknown project", "+15550002222", "assign task ProjectY to alice: fix bug due 10-01-2025", replyTaskError},
		{"malformed", "+15550002222", "assign task ProjectX alice fix bug", replyTaskError},
		{"bad due date", "+15550002222", "assign task ProjectX to alice: fix bug due tomorrow", replyTaskError},
		{"not a manager", "+15550001111", "assign task ProjectX to alice: fix bug due 10-01-2025", replyTaskHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.send(t, tt.phone, tt.body))
		})
	}

	tasks, err := h.store.Tasks().GetByAssignee(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTask_MyTasks(t *testing.T) {
	h := newHarness(t)
	h.member(t, "+15550001111", "alice")
	boss := h.member(t, "+15550002222", "boss", asManager)
	setupProject(t, h, boss.ID)

	assert.Equal(t, replyNoTasks, h.send(t, "+15550001111", "my tasks"))

	h.send(t, "+15550002222", "assign task ProjectX to alice: write docs due 20-01-2025")
	h.send(t, "+15550002222", "assign task ProjectX to alice: fix bug due 10-01-2025")

	assert.Equal(t, "📌 Your tasks:\n- fix bug (Due: 10-01-2025)\n- write docs (Due: 20-01-2025)",
		h.send(t, "+15550001111", "my tasks"))
}

func TestProfile_UpdatePhone(t *testing.T) {
	h := newHarness(t)
	alice := h.member(t, "+15550001111", "alice")
	h.member(t, "+15550002222", "bob")

	assert.Equal(t, replyPhoneInvalid, h.send(t, "+15550001111", "update phone 12ab"))
	assert.Equal(t, replyPhoneTaken, h.send(t, "+15550001111", "update phone +15550002222"))
	assert.Equal(t, replyPhoneUpdated, h.send(t, "+15550001111", "update phone +1 555-000-3333"))

	assert.Equal(t, "+1 555-000-3333", h.get(t, alice.ID).Phone)
}

type failingLeaves struct {
	leave.LeaveRequestRepository
}

func (failingLeaves) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	return leave.LeaveRequest{}, errors.New("disk full")
}

func TestLeave_StorageError(t *testing.T) {
	h := newHarness(t)
	h.svc.leaveRequestRepository = failingLeaves{LeaveRequestRepository: h.store.LeaveRequests()}
	h.member(t, "+15550001111", "alice")

	assert.Equal(t, replyLeaveError, h.send(t, "+15550001111", "apply leave 01-01-2025 to 05-01-2025"))
}
