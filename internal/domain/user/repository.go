package user

import (
	"context"
	"time"
)

type UserRepository interface {
	GetByPhone(ctx context.Context, phone string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)

	// UpdateSession stores the session variant. A non-nil activity also
	// moves last_activity.
	UpdateSession(ctx context.Context, id string, session Session, activity *time.Time) error
	// CompleteSignup commits the staged username and password hash and
	// authenticates the session in one write.
	CompleteSignup(ctx context.Context, id, username, passwordHash string, at time.Time) error
	// CompleteLogin authenticates a returning user and clears failed attempts.
	CompleteLogin(ctx context.Context, id string, at time.Time) error
	// IncrementLoginAttempts returns the attempt count after the increment.
	IncrementLoginAttempts(ctx context.Context, id string) (int, error)
	ResetLoginAttempts(ctx context.Context, id string) error
	TouchActivity(ctx context.Context, id string, at time.Time) error
	UpdateFirstName(ctx context.Context, id, firstName string) error
	UpdatePhone(ctx context.Context, id, phone string) error

	// ExpireSessions moves every session not already awaiting a username whose
	// last activity is before cutoff back to awaiting_username and returns how
	// many changed.
	ExpireSessions(ctx context.Context, cutoff time.Time) (int64, error)
}
