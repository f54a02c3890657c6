package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
	"github.com/google/uuid"
)

const (
	replyLeaveSubmitted        = "✅ Leave request submitted!"
	replyLeaveFormat           = "❌ Format: apply leave DD-MM-YYYY to DD-MM-YYYY"
	replyLeaveApproved         = "✅ Leave approved!"
	replyLeaveNotFound         = "❌ Leave request not found"
	replyLeaveAlreadyProcessed = "❌ Leave request already processed"
	replyNoPendingLeaves       = "📋 No pending leave requests"
	replyNoLeaves              = "📅 You have no leave requests"
	replyLeaveHelp             = "📅 Leave commands:\n• apply leave [dates]\n• approve leave [ID]"
	replyLeaveError            = "⚠️ Error processing leave request"
)

func (s *ChatServiceImpl) handleLeave(ctx context.Context, u *user.User, text string) string {
	log := logger.FromContext(ctx, s.logger).With(slog.String("subsystem", "leave"))

	action, args := chat.ParseLeaveAction(text)
	switch action {
	case chat.LeaveActionApply:
		return s.applyLeave(ctx, log, u, args)
	case chat.LeaveActionApprove:
		if !user.Can(u, user.CapabilityApproveLeave) {
			return replyLeaveHelp
		}
		fields := strings.Fields(args)
		if len(fields) == 0 {
			return s.pendingLeaves(ctx, log)
		}
		return s.approveLeave(ctx, log, u, fields[0])
	case chat.LeaveActionList:
		return s.myLeaves(ctx, log, u)
	}
	return replyLeaveHelp
}

func (s *ChatServiceImpl) applyLeave(ctx context.Context, log *slog.Logger, u *user.User, args string) string {
	dates, err := chat.ParseLeaveDates(args)
	if err != nil {
		return replyLeaveFormat
	}

	created, err := s.leaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID: u.ID,
		LeaveType:  leave.LeaveTypeAnnual,
		StartDate:  dates.Start,
		EndDate:    dates.End,
		Status:     leave.LeaveRequestStatusPending,
	})
	if err != nil {
		log.Error("create leave request", slog.String("user_id", u.ID), slog.Any("error", err))
		return replyLeaveError
	}

	log.Info("leave request submitted",
		slog.String("user_id", u.ID),
		slog.String("leave_request_id", created.ID),
	)
	return replyLeaveSubmitted
}

func (s *ChatServiceImpl) approveLeave(ctx context.Context, log *slog.Logger, u *user.User, id string) string {
	if _, err := uuid.Parse(id); err != nil {
		return replyLeaveNotFound
	}

	err := s.leaveRequestRepository.Approve(ctx, id, u.ID, s.now())
	switch {
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		return replyLeaveNotFound
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		return replyLeaveAlreadyProcessed
	case err != nil:
		log.Error("approve leave request",
			slog.String("user_id", u.ID),
			slog.String("leave_request_id", id),
			slog.Any("error", err),
		)
		return replyLeaveError
	}

	log.Info("leave request approved",
		slog.String("user_id", u.ID),
		slog.String("leave_request_id", id),
	)
	return replyLeaveApproved
}

func (s *ChatServiceImpl) pendingLeaves(ctx context.Context, log *slog.Logger) string {
	requests, err := s.leaveRequestRepository.GetPending(ctx)
	if err != nil {
		log.Error("list pending leave requests", slog.Any("error", err))
		return replyLeaveError
	}
	if len(requests) == 0 {
		return replyNoPendingLeaves
	}

	lines := []string{"📋 Pending leave requests:"}
	for _, r := range requests {
		username := ""
		if r.EmployeeUsername != nil {
			username = *r.EmployeeUsername
		}
		lines = append(lines, fmt.Sprintf("- %s: %s %s to %s",
			r.ID, username, validator.FormatDate(r.StartDate), validator.FormatDate(r.EndDate)))
	}
	return strings.Join(lines, "\n")
}

func (s *ChatServiceImpl) myLeaves(ctx context.Context, log *slog.Logger, u *user.User) string {
	requests, err := s.leaveRequestRepository.GetByEmployeeID(ctx, u.ID)
	if err != nil {
		log.Error("list leave requests", slog.String("user_id", u.ID), slog.Any("error", err))
		return replyLeaveError
	}
	if len(requests) == 0 {
		return replyNoLeaves
	}

	lines := []string{"📅 Your leave requests:"}
	for _, r := range requests {
		lines = append(lines, fmt.Sprintf("- %s to %s (%s)",
			validator.FormatDate(r.StartDate), validator.FormatDate(r.EndDate), r.Status))
	}
	return strings.Join(lines, "\n")
}
