package auth

import (
	"context"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
)

// AuthService advances the chat login state machine by one turn. It never
// fails: storage errors are logged and answered with a restart reply.
type AuthService interface {
	Advance(ctx context.Context, u *user.User, input string) string
}
