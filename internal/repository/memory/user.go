package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
)

type userRepository struct {
	store *Store
}

func cloneUser(u user.User) user.User {
	u.Username = cloneString(u.Username)
	u.PasswordHash = cloneString(u.PasswordHash)
	u.Department = cloneString(u.Department)
	u.Position = cloneString(u.Position)
	return u
}

// findLocked returns the first user matching pred. Callers hold the lock.
func (r *userRepository) findLocked(pred func(user.User) bool) (user.User, bool) {
	for _, u := range r.store.users {
		if pred(u) {
			return u, true
		}
	}
	return user.User{}, false
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.findLocked(func(u user.User) bool { return u.Phone == phone })
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.findLocked(func(u user.User) bool {
		return u.Username != nil && *u.Username == username
	})
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.findLocked(func(u user.User) bool { return u.Phone == newUser.Phone }); taken {
		return user.User{}, user.ErrPhoneTaken
	}
	if newUser.Username != nil {
		name := *newUser.Username
		if _, taken := r.findLocked(func(u user.User) bool { return u.Username != nil && *u.Username == name }); taken {
			return user.User{}, user.ErrUsernameTaken
		}
	}

	id, err := newID()
	if err != nil {
		return user.User{}, err
	}

	now := time.Now()
	created := cloneUser(newUser)
	created.ID = id
	if created.Session == nil {
		created.Session = user.AwaitingUsername{}
	}
	if created.LastActivity.IsZero() {
		created.LastActivity = now
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.store.users[id] = created
	return cloneUser(created), nil
}

// update applies fn to the stored user under the write lock.
func (r *userRepository) update(id string, fn func(u *user.User) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	r.store.users[id] = u
	return nil
}

func (r *userRepository) UpdateSession(ctx context.Context, id string, session user.Session, activity *time.Time) error {
	return r.update(id, func(u *user.User) error {
		u.Session = session
		if activity != nil {
			u.LastActivity = *activity
		}
		return nil
	})
}

func (r *userRepository) CompleteSignup(ctx context.Context, id, username, passwordHash string, at time.Time) error {
	return r.update(id, func(u *user.User) error {
		if _, taken := r.findLocked(func(o user.User) bool {
			return o.ID != id && o.Username != nil && *o.Username == username
		}); taken {
			return user.ErrUsernameTaken
		}
		u.Username = &username
		u.PasswordHash = &passwordHash
		u.Session = user.Authenticated{}
		u.LoginAttempts = 0
		u.LastActivity = at
		return nil
	})
}

func (r *userRepository) CompleteLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(u *user.User) error {
		u.Session = user.Authenticated{}
		u.LoginAttempts = 0
		u.LastActivity = at
		return nil
	})
}

func (r *userRepository) IncrementLoginAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.update(id, func(u *user.User) error {
		u.LoginAttempts++
		attempts = u.LoginAttempts
		return nil
	})
	return attempts, err
}

func (r *userRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	return r.update(id, func(u *user.User) error {
		u.LoginAttempts = 0
		return nil
	})
}

func (r *userRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(u *user.User) error {
		u.LastActivity = at
		return nil
	})
}

func (r *userRepository) UpdateFirstName(ctx context.Context, id, firstName string) error {
	return r.update(id, func(u *user.User) error {
		u.FirstName = firstName
		return nil
	})
}

func (r *userRepository) UpdatePhone(ctx context.Context, id, phone string) error {
	return r.update(id, func(u *user.User) error {
		if _, taken := r.findLocked(func(o user.User) bool { return o.ID != id && o.Phone == phone }); taken {
			return user.ErrPhoneTaken
		}
		u.Phone = phone
		return nil
	})
}

func (r *userRepository) ExpireSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	now := time.Now()
	for id, u := range r.store.users {
		if _, idle := u.Session.(user.AwaitingUsername); idle {
			continue
		}
		if !u.LastActivity.Before(cutoff) {
			continue
		}
		u.Session = user.AwaitingUsername{}
		u.UpdatedAt = now
		r.store.users[id] = u
		n++
	}
	return n, nil
}
