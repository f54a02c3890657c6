package chat

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
)

const (
	replyPhoneUpdated = "✅ Phone updated!"
	replyPhoneInvalid = "❌ Invalid phone format"
	replyPhoneTaken   = "❌ Phone number already registered"
	replyProfileError = "⚠️ Error updating profile"
	replyProfileHelp  = "📱 Profile commands:\n• update phone [number]"
)

func (s *ChatServiceImpl) handleProfile(ctx context.Context, u *user.User, text string) string {
	action, args := chat.ParseProfileAction(text)
	if action != chat.ProfileActionUpdatePhone {
		return replyProfileHelp
	}

	if !validator.IsValidPhoneNumber(args) {
		return replyPhoneInvalid
	}

	log := logger.FromContext(ctx, s.logger).With(slog.String("subsystem", "profile"))
	err := s.userRepository.UpdatePhone(ctx, u.ID, args)
	if errors.Is(err, user.ErrPhoneTaken) {
		return replyPhoneTaken
	}
	if err != nil {
		log.Error("update phone", slog.String("user_id", u.ID), slog.Any("error", err))
		return replyProfileError
	}

	log.Info("phone updated", slog.String("user_id", u.ID))
	u.Phone = args
	return replyPhoneUpdated
}
