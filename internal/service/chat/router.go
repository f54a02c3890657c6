package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	replyLoggedOut = "👋 Logged out successfully"
	replyGreeting  = "👋 Hello %s! How can I help?"
	replyNameSet   = "👍 I'll call you %s from now on!"
	replyUnknown   = "🤔 I didn't understand. Send 'menu' for options."
)

// route dispatches one authenticated message. Activity is recorded before
// any command runs.
func (s *ChatServiceImpl) route(ctx context.Context, u *user.User, text string) (string, error) {
	now := s.now()
	if err := s.userRepository.TouchActivity(ctx, u.ID, now); err != nil {
		return "", fmt.Errorf("touch activity: %w", err)
	}
	u.LastActivity = now

	cmd := chat.ParseCommand(text)
	switch cmd.Intent {
	case chat.IntentLogout:
		if err := s.userRepository.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil); err != nil {
			return "", fmt.Errorf("logout: %w", err)
		}
		u.Session = user.AwaitingUsername{}
		return replyLoggedOut, nil
	case chat.IntentMenu:
		return mainMenu(u), nil
	case chat.IntentLeave:
		return s.handleLeave(ctx, u, cmd.Text), nil
	case chat.IntentTask:
		return s.handleTask(ctx, u, cmd.Text), nil
	case chat.IntentProfile:
		return s.handleProfile(ctx, u, cmd.Text), nil
	case chat.IntentGreeting:
		return fmt.Sprintf(replyGreeting, u.DisplayUsername()), nil
	case chat.IntentSetName:
		name := cases.Title(language.Und).String(cmd.Args)
		if err := s.userRepository.UpdateFirstName(ctx, u.ID, name); err != nil {
			return "", fmt.Errorf("set first name: %w", err)
		}
		u.FirstName = name
		return fmt.Sprintf(replyNameSet, name), nil
	}
	return replyUnknown, nil
}

func mainMenu(u *user.User) string {
	var b strings.Builder
	b.WriteString("📋 Main Menu:\n")
	b.WriteString("• Leave requests (type 'leave')\n")
	b.WriteString("• Task management (type 'task')\n")
	if u.IsStaff() {
		b.WriteString("• HR functions (type 'hr')\n")
	}
	b.WriteString("• Update profile (type 'update')\n")
	b.WriteString("• Logout (type 'logout')")
	return b.String()
}
