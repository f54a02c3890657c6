package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/task"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
)

const (
	replyTaskAssigned = "✅ Task assigned to %s"
	replyNoTasks      = "📌 You have no tasks"
	replyTaskHelp     = "📝 Task commands:\n• assign task [details]\n• my tasks"
	replyTaskError    = "⚠️ Error processing task"
)

func (s *ChatServiceImpl) handleTask(ctx context.Context, u *user.User, text string) string {
	log := logger.FromContext(ctx, s.logger).With(slog.String("subsystem", "task"))

	action, args := chat.ParseTaskAction(text)
	switch action {
	case chat.TaskActionAssign:
		if !user.Can(u, user.CapabilityAssignTasks) {
			return replyTaskHelp
		}
		a, err := s.assignTask(ctx, u, args)
		if err != nil {
			log.Error("assign task", slog.String("user_id", u.ID), slog.Any("error", err))
			return replyTaskError
		}
		return fmt.Sprintf(replyTaskAssigned, a.Username)
	case chat.TaskActionList:
		tasks, err := s.taskRepository.GetByAssignee(ctx, u.ID)
		if err != nil {
			log.Error("list tasks", slog.String("user_id", u.ID), slog.Any("error", err))
			return replyTaskError
		}
		return formatTasks(tasks)
	}
	return replyTaskHelp
}

// assignTask creates one task from "<project> to <username>: <desc> due <date>".
func (s *ChatServiceImpl) assignTask(ctx context.Context, u *user.User, args string) (chat.Assignment, error) {
	a, err := chat.ParseAssignment(args)
	if err != nil {
		return a, err
	}

	project, err := s.projectRepository.GetByName(ctx, a.ProjectName)
	if err != nil {
		return a, fmt.Errorf("project %q: %w", a.ProjectName, err)
	}
	assignee, err := s.userRepository.GetByUsername(ctx, a.Username)
	if err != nil {
		return a, fmt.Errorf("assignee %q: %w", a.Username, err)
	}

	created, err := s.taskRepository.Create(ctx, task.Task{
		ProjectID:   project.ID,
		AssignedTo:  assignee.ID,
		Description: a.Description,
		DueDate:     a.DueDate,
		Status:      task.TaskStatusNotStarted,
	})
	if err != nil {
		return a, fmt.Errorf("create task: %w", err)
	}

	logger.FromContext(ctx, s.logger).Info("task assigned",
		slog.String("subsystem", "task"),
		slog.String("user_id", u.ID),
		slog.String("task_id", created.ID),
		slog.String("assignee_id", assignee.ID),
	)
	return a, nil
}

func formatTasks(tasks []task.Task) string {
	if len(tasks) == 0 {
		return replyNoTasks
	}
	lines := []string{"📌 Your tasks:"}
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- %s (Due: %s)", t.Description, validator.FormatDate(t.DueDate)))
	}
	return strings.Join(lines, "\n")
}
