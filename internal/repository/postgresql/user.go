package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	usersPhoneKey    = "users_phone_key"
	usersUsernameKey = "users_username_key"

	userColumns = `id, phone, username, password_hash, first_name, is_hr, is_manager, is_active,
		department, position, auth_state, temp_username, login_attempts, last_activity,
		created_at, updated_at`
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u            user.User
		authState    string
		tempUsername *string
	)
	err := row.Scan(
		&u.ID,
		&u.Phone,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.IsHR,
		&u.IsManager,
		&u.IsActive,
		&u.Department,
		&u.Position,
		&authState,
		&tempUsername,
		&u.LoginAttempts,
		&u.LastActivity,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	u.Session = user.DecodeSession(authState, tempUsername, u.Username)
	return u, nil
}

// GetByPhone implements user.UserRepository.
func (r *userRepositoryImpl) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return scanUser(q.QueryRow(ctx, query, phone))
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.QueryRow(ctx, query, id))
}

// GetByUsername implements user.UserRepository.
func (r *userRepositoryImpl) GetByUsername(ctx context.Context, username string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(q.QueryRow(ctx, query, username))
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user id: %w", err)
	}
	authState, tempUsername := user.EncodeSession(newUser.Session)
	lastActivity := newUser.LastActivity
	if lastActivity.IsZero() {
		lastActivity = time.Now()
	}

	query := `
		INSERT INTO users (
			id, phone, username, password_hash, first_name, is_hr, is_manager, is_active,
			department, position, auth_state, temp_username, login_attempts, last_activity,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		id.String(),
		newUser.Phone,
		newUser.Username,
		newUser.PasswordHash,
		newUser.FirstName,
		newUser.IsHR,
		newUser.IsManager,
		newUser.IsActive,
		newUser.Department,
		newUser.Position,
		string(authState),
		tempUsername,
		newUser.LoginAttempts,
		lastActivity,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, usersPhoneKey):
			return user.User{}, user.ErrPhoneTaken
		case isUniqueViolation(err, usersUsernameKey):
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, err
	}

	return created, nil
}

// exec runs a single-row UPDATE and reports ErrUserNotFound when nothing matched.
func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateSession implements user.UserRepository.
func (r *userRepositoryImpl) UpdateSession(ctx context.Context, id string, session user.Session, activity *time.Time) error {
	authState, tempUsername := user.EncodeSession(session)

	query := `
		UPDATE users
		SET auth_state = $1, temp_username = $2,
			last_activity = COALESCE($3, last_activity), updated_at = NOW()
		WHERE id = $4
	`
	return r.exec(ctx, query, string(authState), tempUsername, activity, id)
}

// CompleteSignup implements user.UserRepository.
func (r *userRepositoryImpl) CompleteSignup(ctx context.Context, id, username, passwordHash string, at time.Time) error {
	query := `
		UPDATE users
		SET username = $1, password_hash = $2, auth_state = $3, temp_username = NULL,
			login_attempts = 0, last_activity = $4, updated_at = NOW()
		WHERE id = $5
	`
	err := r.exec(ctx, query, username, passwordHash, string(user.AuthStateAuthenticated), at, id)
	if isUniqueViolation(err, usersUsernameKey) {
		return user.ErrUsernameTaken
	}
	return err
}

// CompleteLogin implements user.UserRepository.
func (r *userRepositoryImpl) CompleteLogin(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE users
		SET auth_state = $1, temp_username = NULL, login_attempts = 0,
			last_activity = $2, updated_at = NOW()
		WHERE id = $3
	`
	return r.exec(ctx, query, string(user.AuthStateAuthenticated), at, id)
}

// IncrementLoginAttempts implements user.UserRepository.
func (r *userRepositoryImpl) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET login_attempts = login_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING login_attempts
	`
	var attempts int
	if err := q.QueryRow(ctx, query, id).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, user.ErrUserNotFound
		}
		return 0, err
	}
	return attempts, nil
}

// ResetLoginAttempts implements user.UserRepository.
func (r *userRepositoryImpl) ResetLoginAttempts(ctx context.Context, id string) error {
	query := `UPDATE users SET login_attempts = 0, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id)
}

// TouchActivity implements user.UserRepository.
func (r *userRepositoryImpl) TouchActivity(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_activity = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, query, at, id)
}

// UpdateFirstName implements user.UserRepository.
func (r *userRepositoryImpl) UpdateFirstName(ctx context.Context, id, firstName string) error {
	query := `UPDATE users SET first_name = $1, updated_at = NOW() WHERE id = $2`
	return r.exec(ctx, query, firstName, id)
}

// UpdatePhone implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePhone(ctx context.Context, id, phone string) error {
	query := `UPDATE users SET phone = $1, updated_at = NOW() WHERE id = $2`
	err := r.exec(ctx, query, phone, id)
	if isUniqueViolation(err, usersPhoneKey) {
		return user.ErrPhoneTaken
	}
	return err
}

// ExpireSessions implements user.UserRepository.
func (r *userRepositoryImpl) ExpireSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET auth_state = $1, temp_username = NULL, updated_at = NOW()
		WHERE auth_state <> $1 AND last_activity < $2
	`
	commandTag, err := q.Exec(ctx, query, string(user.AuthStateAwaitingUsername), cutoff)
	if err != nil {
		return 0, err
	}
	return commandTag.RowsAffected(), nil
}
