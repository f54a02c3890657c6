package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(repo user.UserRepository, maxAttempts int) *AuthServiceImpl {
	return NewAuthService(repo, logger.Discard(), maxAttempts).(*AuthServiceImpl)
}

func createUser(t *testing.T, repo user.UserRepository, phone string) user.User {
	t.Helper()
	u, err := repo.Create(context.Background(), user.User{Phone: phone, IsActive: true})
	require.NoError(t, err)
	return u
}

func reload(t *testing.T, repo user.UserRepository, id string) *user.User {
	t.Helper()
	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return &u
}

// signup drives a fresh user through both auth turns.
func signup(t *testing.T, svc *AuthServiceImpl, repo user.UserRepository, id, username, password string) {
	t.Helper()
	ctx := context.Background()
	require.Equal(t, replyEnterPassword, svc.Advance(ctx, reload(t, repo, id), username))
	require.Equal(t, "👋 Welcome "+username+"! Type 'menu' for options", svc.Advance(ctx, reload(t, repo, id), password))
}

func TestAdvance_SignupFlow(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 5)
	u := createUser(t, repo, "+15550001111")

	assert.Equal(t, replyUsernameTooShort, svc.Advance(ctx, reload(t, repo, u.ID), "al"))
	assert.Equal(t, user.AwaitingUsername{}, reload(t, repo, u.ID).Session)

	assert.Equal(t, replyEnterPassword, svc.Advance(ctx, reload(t, repo, u.ID), "alice"))
	assert.Equal(t, user.AwaitingPassword{StagedUsername: "alice"}, reload(t, repo, u.ID).Session)

	assert.Equal(t, replyPasswordTooShort, svc.Advance(ctx, reload(t, repo, u.ID), "short1"))
	assert.Equal(t, replyPasswordNoDigit, svc.Advance(ctx, reload(t, repo, u.ID), "longenough"))
	assert.Equal(t, user.AwaitingPassword{StagedUsername: "alice"}, reload(t, repo, u.ID).Session)

	assert.Equal(t, "👋 Welcome alice! Type 'menu' for options", svc.Advance(ctx, reload(t, repo, u.ID), "password1"))

	got := reload(t, repo, u.ID)
	assert.True(t, got.IsAuthenticated())
	require.NotNil(t, got.Username)
	assert.Equal(t, "alice", *got.Username)
	require.NotNil(t, got.PasswordHash)
	assert.NotEqual(t, "password1", *got.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*got.PasswordHash), []byte("password1")))
}

func TestAdvance_UsernameTakenByAnotherUser(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 5)
	alice := createUser(t, repo, "+15550001111")
	bob := createUser(t, repo, "+15550002222")
	signup(t, svc, repo, alice.ID, "alice", "password1")

	assert.Equal(t, replyUsernameTaken, svc.Advance(ctx, reload(t, repo, bob.ID), "alice"))
	assert.Equal(t, user.AwaitingUsername{}, reload(t, repo, bob.ID).Session)
}

func TestAdvance_UsernameClaimedBetweenTurns(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 5)
	alice := createUser(t, repo, "+15550001111")
	bob := createUser(t, repo, "+15550002222")

	require.Equal(t, replyEnterPassword, svc.Advance(ctx, reload(t, repo, alice.ID), "shared"))
	require.Equal(t, replyEnterPassword, svc.Advance(ctx, reload(t, repo, bob.ID), "shared"))
	require.Equal(t, "👋 Welcome shared! Type 'menu' for options", svc.Advance(ctx, reload(t, repo, alice.ID), "password1"))

	assert.Equal(t, replyUsernameTaken, svc.Advance(ctx, reload(t, repo, bob.ID), "password2"))
	got := reload(t, repo, bob.ID)
	assert.Equal(t, user.AwaitingUsername{}, got.Session)
	assert.Nil(t, got.Username)
}

func TestAdvance_ReturningUser(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 5)
	u := createUser(t, repo, "+15550001111")
	signup(t, svc, repo, u.ID, "alice", "password1")
	require.NoError(t, repo.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil))

	assert.Equal(t, replyWelcomeBack, svc.Advance(ctx, reload(t, repo, u.ID), "alice"))
	assert.Equal(t, user.AwaitingPassword{StagedUsername: "alice", Returning: true}, reload(t, repo, u.ID).Session)

	assert.Equal(t, replyIncorrectPassword, svc.Advance(ctx, reload(t, repo, u.ID), "wrongpass1"))
	assert.Equal(t, 1, reload(t, repo, u.ID).LoginAttempts)

	assert.Equal(t, "👋 Welcome alice! Type 'menu' for options", svc.Advance(ctx, reload(t, repo, u.ID), "password1"))
	got := reload(t, repo, u.ID)
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, 0, got.LoginAttempts)
}

func TestAdvance_TooManyAttempts(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 2)
	u := createUser(t, repo, "+15550001111")
	signup(t, svc, repo, u.ID, "alice", "password1")
	require.NoError(t, repo.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil))
	require.Equal(t, replyWelcomeBack, svc.Advance(ctx, reload(t, repo, u.ID), "alice"))

	assert.Equal(t, replyIncorrectPassword, svc.Advance(ctx, reload(t, repo, u.ID), "nope12345"))
	assert.Equal(t, replyTooManyAttempts, svc.Advance(ctx, reload(t, repo, u.ID), "nope12345"))

	got := reload(t, repo, u.ID)
	assert.Equal(t, user.AwaitingUsername{}, got.Session)
	assert.Equal(t, 0, got.LoginAttempts)
}

func TestAdvance_RecordsActivityOnTransition(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 5)
	fixed := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	u := createUser(t, repo, "+15550001111")

	svc.Advance(ctx, reload(t, repo, u.ID), "alice")
	assert.True(t, reload(t, repo, u.ID).LastActivity.Equal(fixed))

	later := fixed.Add(time.Minute)
	svc.now = func() time.Time { return later }
	svc.Advance(ctx, reload(t, repo, u.ID), "password1")
	assert.True(t, reload(t, repo, u.ID).LastActivity.Equal(later))
}

func TestAdvance_InvalidState(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	svc := newTestService(repo, 5)

	tests := []struct {
		name    string
		session user.Session
	}{
		{"unknown stored value", user.UnknownSession{Raw: "bogus"}},
		{"authenticated", user.Authenticated{}},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &user.User{ID: "u1", Session: tt.session}
			assert.Equal(t, replyInvalidState, svc.Advance(ctx, u, "anything"))
		})
	}
}

type failingUsers struct {
	user.UserRepository
}

func (failingUsers) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return user.User{}, errors.New("connection reset")
}

func TestAdvance_StorageErrorResetsSession(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Users()
	u := createUser(t, repo, "+15550001111")
	require.NoError(t, repo.UpdateSession(ctx, u.ID, user.AwaitingPassword{StagedUsername: "alice"}, nil))

	svc := newTestService(failingUsers{UserRepository: repo}, 5)
	current := reload(t, repo, u.ID)
	current.Session = user.AwaitingUsername{}

	assert.Equal(t, replySystemError, svc.Advance(ctx, current, "alice"))
	assert.Equal(t, user.AwaitingUsername{}, reload(t, repo, u.ID).Session)
}
