package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestSessionRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		username *string
	}{
		{"awaiting username", AwaitingUsername{}, nil},
		{"new signup", AwaitingPassword{StagedUsername: "alice"}, nil},
		{"returning", AwaitingPassword{StagedUsername: "alice", Returning: true}, strPtr("alice")},
		{"renaming", AwaitingPassword{StagedUsername: "alicia"}, strPtr("alice")},
		{"authenticated", Authenticated{}, strPtr("alice")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, temp := EncodeSession(tt.session)
			assert.Equal(t, tt.session, DecodeSession(string(state), temp, tt.username))
		})
	}
}

func TestEncodeSession_ClearsStagingOutsidePasswordState(t *testing.T) {
	state, temp := EncodeSession(Authenticated{})
	assert.Equal(t, AuthStateAuthenticated, state)
	assert.Nil(t, temp)

	state, temp = EncodeSession(nil)
	assert.Equal(t, AuthStateAwaitingUsername, state)
	assert.Nil(t, temp)
}

func TestDecodeSession_Invalid(t *testing.T) {
	assert.Equal(t, UnknownSession{Raw: "bogus"}, DecodeSession("bogus", nil, nil))
	assert.Equal(t, UnknownSession{Raw: "awaiting_password"}, DecodeSession("awaiting_password", nil, nil))
	assert.Equal(t, UnknownSession{Raw: "awaiting_password"}, DecodeSession("awaiting_password", strPtr(""), nil))
}

func TestCan(t *testing.T) {
	hr := &User{IsHR: true}
	manager := &User{IsManager: true}
	employee := &User{}

	assert.True(t, Can(hr, CapabilityApproveLeave))
	assert.False(t, Can(hr, CapabilityAssignTasks))
	assert.True(t, Can(manager, CapabilityAssignTasks))
	assert.False(t, Can(manager, CapabilityApproveLeave))

	for _, c := range Capabilities {
		assert.False(t, Can(employee, c), c)
		assert.False(t, Can(nil, c), c)
	}
	assert.False(t, Can(&User{IsHR: true, IsManager: true}, Capability("delete_company")))
}

func TestIsIdle(t *testing.T) {
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	timeout := 30 * time.Minute

	assert.False(t, (&User{LastActivity: now.Add(-29 * time.Minute)}).IsIdle(now, timeout))
	assert.False(t, (&User{LastActivity: now.Add(-30 * time.Minute)}).IsIdle(now, timeout))
	assert.True(t, (&User{LastActivity: now.Add(-31 * time.Minute)}).IsIdle(now, timeout))
}

func TestUserHelpers(t *testing.T) {
	u := &User{}
	assert.Equal(t, "", u.DisplayUsername())
	assert.False(t, u.HasCredentials())
	assert.False(t, u.IsStaff())

	u.Username = strPtr("alice")
	u.PasswordHash = strPtr("hash")
	u.Session = Authenticated{}
	u.IsManager = true
	assert.Equal(t, "alice", u.DisplayUsername())
	assert.True(t, u.HasCredentials())
	assert.True(t, u.IsAuthenticated())
	assert.True(t, u.IsStaff())
}
