package user

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrPhoneTaken     = errors.New("phone already registered")
	ErrUnknownSession = errors.New("unknown session state")
)
