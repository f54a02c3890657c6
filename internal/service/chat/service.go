package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/auth"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
)

type ChatServiceImpl struct {
	userRepository         user.UserRepository
	leaveRequestRepository leave.LeaveRequestRepository
	projectRepository      task.ProjectRepository
	taskRepository         task.TaskRepository
	authService            auth.AuthService
	logger                 *slog.Logger
	sessionTimeout         time.Duration
	now                    func() time.Time
}

func NewChatService(
	userRepository user.UserRepository,
	leaveRequestRepository leave.LeaveRequestRepository,
	projectRepository task.ProjectRepository,
	taskRepository task.TaskRepository,
	authService auth.AuthService,
	logger *slog.Logger,
	sessionTimeout time.Duration,
) chat.ChatService {
	return &ChatServiceImpl{
		userRepository:         userRepository,
		leaveRequestRepository: leaveRequestRepository,
		projectRepository:      projectRepository,
		taskRepository:         taskRepository,
		authService:            authService,
		logger:                 logger,
		sessionTimeout:         sessionTimeout,
		now:                    time.Now,
	}
}

// HandleMessage implements chat.ChatService.
func (s *ChatServiceImpl) HandleMessage(ctx context.Context, msg chat.InboundMessage) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	u, err := s.resolveUser(ctx, msg.Phone())
	if err != nil {
		return "", err
	}

	if u.IsAuthenticated() {
		return s.route(ctx, &u, msg.Text())
	}
	return s.authService.Advance(ctx, &u, msg.Text()), nil
}

// resolveUser loads the sender, creating a new account on first contact and
// ending the live session when it has been idle past the timeout.
func (s *ChatServiceImpl) resolveUser(ctx context.Context, phone string) (user.User, error) {
	log := logger.FromContext(ctx, s.logger)
	now := s.now()

	u, err := s.userRepository.GetByPhone(ctx, phone)
	if errors.Is(err, user.ErrUserNotFound) {
		u, err = s.userRepository.Create(ctx, user.User{
			Phone:        phone,
			IsActive:     true,
			Session:      user.AwaitingUsername{},
			LastActivity: now,
		})
		if errors.Is(err, user.ErrPhoneTaken) {
			// Another message from the same phone created it first.
			u, err = s.userRepository.GetByPhone(ctx, phone)
		}
		if err != nil {
			return user.User{}, fmt.Errorf("create user: %w", err)
		}
		log.Info("new user", slog.String("user_id", u.ID))
		return u, nil
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user by phone: %w", err)
	}

	if _, fresh := u.Session.(user.AwaitingUsername); !fresh && u.IsIdle(now, s.sessionTimeout) {
		if err := s.userRepository.UpdateSession(ctx, u.ID, user.AwaitingUsername{}, nil); err != nil {
			return user.User{}, fmt.Errorf("expire session: %w", err)
		}
		log.Info("session expired",
			slog.String("user_id", u.ID),
			slog.Duration("idle", now.Sub(u.LastActivity)),
		)
		u.Session = user.AwaitingUsername{}
	}

	return u, nil
}
