package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/leave"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/user"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	leaveRequestsEmployeeFKey = "leave_requests_employee_id_fkey"

	leaveRequestColumns = `lr.id, lr.employee_id, lr.leave_type, lr.start_date, lr.end_date, lr.status,
		lr.approved_by, lr.approved_at, lr.created_at, u.username`
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.LeaveType,
		&lr.StartDate,
		&lr.EndDate,
		&lr.Status,
		&lr.ApprovedBy,
		&lr.ApprovedAt,
		&lr.CreatedAt,
		&lr.EmployeeUsername,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("generate leave request id: %w", err)
	}
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	err = q.QueryRow(ctx, query,
		id.String(),
		request.EmployeeID,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, leaveRequestsEmployeeFKey) {
			return leave.LeaveRequest{}, user.ErrUserNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN users u ON lr.employee_id = u.id
		WHERE lr.id = $1
	`
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return lr, nil
}

// GetByEmployeeID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN users u ON lr.employee_id = u.id
		WHERE lr.employee_id = $1
		ORDER BY lr.created_at, lr.id
	`
	return r.list(ctx, query, employeeID)
}

// GetPending implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetPending(ctx context.Context) ([]leave.LeaveRequest, error) {
	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN users u ON lr.employee_id = u.id
		WHERE lr.status = $1
		ORDER BY lr.created_at, lr.id
	`
	return r.list(ctx, query, leave.LeaveRequestStatusPending)
}

func (r *leaveRequestRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// Approve implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Approve(ctx context.Context, id, approvedBy string, at time.Time) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var status leave.LeaveRequestStatus
		err := q.QueryRow(ctx, `SELECT status FROM leave_requests WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return leave.ErrLeaveRequestNotFound
			}
			return err
		}
		if status != leave.LeaveRequestStatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		query := `
			UPDATE leave_requests
			SET status = $1, approved_by = $2, approved_at = $3
			WHERE id = $4
		`
		_, err = q.Exec(ctx, query, leave.LeaveRequestStatusApproved, approvedBy, at, id)
		return err
	})
}
