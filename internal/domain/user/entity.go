package user

import "time"

type User struct {
	ID            string
	Phone         string
	Username      *string
	PasswordHash  *string
	FirstName     string
	IsHR          bool
	IsManager     bool
	IsActive      bool
	Department    *string
	Position      *string
	Session       Session
	LoginAttempts int
	LastActivity  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayUsername returns the committed username or an empty string.
func (u *User) DisplayUsername() string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}

// HasCredentials reports whether signup has been completed at least once.
func (u *User) HasCredentials() bool {
	return u.Username != nil && u.PasswordHash != nil
}

// IsIdle reports whether the last activity is older than timeout at now.
func (u *User) IsIdle(now time.Time, timeout time.Duration) bool {
	return now.Sub(u.LastActivity) > timeout
}

// IsAuthenticated reports whether the live session passed login.
func (u *User) IsAuthenticated() bool {
	_, ok := u.Session.(Authenticated)
	return ok
}
