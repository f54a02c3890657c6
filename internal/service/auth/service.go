package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/auth"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

const (
	replyUsernameTooShort  = "❌ Username must be 3+ characters"
	replyUsernameTaken     = "❌ Username taken. Try another"
	replyEnterPassword     = "🔒 Please enter your password (8+ chars with a number)"
	replyWelcomeBack       = "🔒 Welcome back! Please enter your password"
	replyPasswordTooShort  = "❌ Password must be 8+ characters"
	replyPasswordNoDigit   = "❌ Password must contain a number"
	replyWelcome           = "👋 Welcome %s! Type 'menu' for options"
	replyIncorrectPassword = "❌ Incorrect password"
	replyTooManyAttempts   = "🔒 Too many failed attempts. Send your username to start over."
	replyInvalidState      = "❌ Invalid state. Send 'hello' to restart."
	replySystemError       = "⚠️ System error. Please start over."
)

type AuthServiceImpl struct {
	user.UserRepository
	logger      *slog.Logger
	maxAttempts int
	now         func() time.Time
}

func NewAuthService(userRepository user.UserRepository, logger *slog.Logger, maxAttempts int) auth.AuthService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &AuthServiceImpl{
		UserRepository: userRepository,
		logger:         logger,
		maxAttempts:    maxAttempts,
		now:            time.Now,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Advance implements auth.AuthService.
func (a *AuthServiceImpl) Advance(ctx context.Context, u *user.User, input string) string {
	switch s := u.Session.(type) {
	case user.AwaitingUsername:
		return a.stageUsername(ctx, u, input)
	case user.AwaitingPassword:
		if s.Returning {
			return a.verifyPassword(ctx, u, s, input)
		}
		return a.register(ctx, u, s, input)
	}

	logger.FromContext(ctx, a.logger).Warn("unexpected session state",
		slog.String("subsystem", "auth"),
		slog.String("user_id", u.ID),
		slog.String("state", sessionState(u.Session)),
		slog.Any("error", user.ErrUnknownSession),
	)
	return replyInvalidState
}

func sessionState(s user.Session) string {
	if s == nil {
		return ""
	}
	return string(s.State())
}

func (a *AuthServiceImpl) stageUsername(ctx context.Context, u *user.User, input string) string {
	if !validator.IsValidUsernameLength(input) {
		return replyUsernameTooShort
	}

	returning := false
	owner, err := a.UserRepository.GetByUsername(ctx, input)
	switch {
	case err == nil && owner.ID != u.ID:
		return replyUsernameTaken
	case err == nil:
		returning = u.HasCredentials()
	case !errors.Is(err, user.ErrUserNotFound):
		return a.fail(ctx, u, fmt.Errorf("lookup username: %w", err))
	}

	next := user.AwaitingPassword{StagedUsername: input, Returning: returning}
	now := a.now()
	if err := a.UserRepository.UpdateSession(ctx, u.ID, next, &now); err != nil {
		return a.fail(ctx, u, fmt.Errorf("stage username: %w", err))
	}
	u.Session = next
	u.LastActivity = now

	if returning {
		return replyWelcomeBack
	}
	return replyEnterPassword
}

func (a *AuthServiceImpl) register(ctx context.Context, u *user.User, s user.AwaitingPassword, password string) string {
	switch validator.CheckPassword(password) {
	case validator.PasswordTooShort:
		return replyPasswordTooShort
	case validator.PasswordMissingDigit:
		return replyPasswordNoDigit
	}

	hash, err := a.hashPassword(password)
	if err != nil {
		return a.fail(ctx, u, err)
	}

	now := a.now()
	err = a.UserRepository.CompleteSignup(ctx, u.ID, s.StagedUsername, hash, now)
	if errors.Is(err, user.ErrUsernameTaken) {
		// Claimed by someone else between the two turns.
		if err := a.UserRepository.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil); err != nil {
			return a.fail(ctx, u, fmt.Errorf("reset session: %w", err))
		}
		u.Session = user.AwaitingUsername{}
		return replyUsernameTaken
	}
	if err != nil {
		return a.fail(ctx, u, fmt.Errorf("complete signup: %w", err))
	}

	username := s.StagedUsername
	u.Username = &username
	u.PasswordHash = &hash
	u.Session = user.Authenticated{}
	u.LoginAttempts = 0
	u.LastActivity = now

	logger.FromContext(ctx, a.logger).Info("user registered",
		slog.String("subsystem", "auth"),
		slog.String("user_id", u.ID),
		slog.String("username", username),
	)
	return fmt.Sprintf(replyWelcome, username)
}

func (a *AuthServiceImpl) verifyPassword(ctx context.Context, u *user.User, s user.AwaitingPassword, password string) string {
	if u.PasswordHash == nil {
		return a.fail(ctx, u, fmt.Errorf("returning user %s has no password hash", u.ID))
	}

	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return a.rejectPassword(ctx, u)
	}
	if err != nil {
		return a.fail(ctx, u, fmt.Errorf("compare password: %w", err))
	}

	now := a.now()
	if err := a.UserRepository.CompleteLogin(ctx, u.ID, now); err != nil {
		return a.fail(ctx, u, fmt.Errorf("complete login: %w", err))
	}
	u.Session = user.Authenticated{}
	u.LoginAttempts = 0
	u.LastActivity = now

	logger.FromContext(ctx, a.logger).Info("user logged in",
		slog.String("subsystem", "auth"),
		slog.String("user_id", u.ID),
	)
	return fmt.Sprintf(replyWelcome, s.StagedUsername)
}

func (a *AuthServiceImpl) rejectPassword(ctx context.Context, u *user.User) string {
	attempts, err := a.UserRepository.IncrementLoginAttempts(ctx, u.ID)
	if err != nil {
		return a.fail(ctx, u, fmt.Errorf("count login attempt: %w", err))
	}
	u.LoginAttempts = attempts

	log := logger.FromContext(ctx, a.logger)
	if attempts < a.maxAttempts {
		log.Info("incorrect password",
			slog.String("subsystem", "auth"),
			slog.String("user_id", u.ID),
			slog.Int("attempts", attempts),
			slog.Any("error", auth.ErrInvalidCredentials),
		)
		return replyIncorrectPassword
	}

	log.Warn("login locked out",
		slog.String("subsystem", "auth"),
		slog.String("user_id", u.ID),
		slog.Any("error", auth.ErrTooManyAttempts),
	)
	if err := a.UserRepository.ResetLoginAttempts(ctx, u.ID); err != nil {
		return a.fail(ctx, u, fmt.Errorf("reset login attempts: %w", err))
	}
	if err := a.UserRepository.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil); err != nil {
		return a.fail(ctx, u, fmt.Errorf("reset session: %w", err))
	}
	u.Session = user.AwaitingUsername{}
	u.LoginAttempts = 0
	return replyTooManyAttempts
}

// fail logs err and makes a best-effort reset to AwaitingUsername.
func (a *AuthServiceImpl) fail(ctx context.Context, u *user.User, err error) string {
	log := logger.FromContext(ctx, a.logger)
	log.Error("auth error",
		slog.String("subsystem", "auth"),
		slog.String("user_id", u.ID),
		slog.Any("error", err),
	)

	if resetErr := a.UserRepository.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil); resetErr != nil {
		log.Error("reset session after auth error",
			slog.String("subsystem", "auth"),
			slog.String("user_id", u.ID),
			slog.Any("error", resetErr),
		)
	} else {
		u.Session = user.AwaitingUsername{}
	}
	return replySystemError
}
