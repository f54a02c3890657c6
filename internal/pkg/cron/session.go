package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
)

// SessionJobs contains chat session cron jobs
type SessionJobs struct {
	userRepository user.UserRepository
	timeout        time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewSessionJobs creates session cron jobs
func NewSessionJobs(userRepository user.UserRepository, timeout time.Duration, logger *slog.Logger) *SessionJobs {
	return &SessionJobs{
		userRepository: userRepository,
		timeout:        timeout,
		logger:         logger,
		now:            time.Now,
	}
}

// RegisterJobs registers all session-related cron jobs
func (j *SessionJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	return scheduler.AddJob("expire_idle_sessions", spec, j.ExpireIdleSessions)
}

// ExpireIdleSessions moves every session idle longer than the timeout back
// to awaiting_username. Accounts and credentials are kept.
func (j *SessionJobs) ExpireIdleSessions(ctx context.Context) error {
	n, err := j.userRepository.ExpireSessions(ctx, j.now().Add(-j.timeout))
	if err != nil {
		return fmt.Errorf("expire sessions: %w", err)
	}
	if n > 0 {
		j.logger.Info("Expired idle sessions", "count", n)
	}
	return nil
}
