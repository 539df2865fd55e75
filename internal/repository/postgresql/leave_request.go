package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.start_date, lr.end_date, lr.reason, lr.leave_type, lr.status,
	lr.decided_by, lr.decided_at, lr.version, lr.created_at, lr.updated_at, e.name`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.StartDate, &lr.EndDate, &lr.Reason, &lr.LeaveType, &lr.Status,
		&lr.DecidedBy, &lr.DecidedAt, &lr.Version, &lr.CreatedAt, &lr.UpdatedAt, &lr.EmployeeName,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (employee_id, start_date, end_date, reason, leave_type, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query,
		request.EmployeeID, request.StartDate, request.EndDate, request.Reason, request.LeaveType, request.Status,
	).Scan(&id)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		INNER JOIN employees e ON lr.employee_id = e.id
		WHERE lr.id = $1
	`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %d: %w", id, err)
	}
	return lr, nil
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1, decided_by = $2, decided_at = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query, request.Status, request.DecidedBy, request.DecidedAt, request.ID, request.Version).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, missingOrStale(ctx, q, "leave_requests", request.ID, leave.ErrLeaveRequestNotFound)
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request %d: %w", request.ID, err)
	}

	return r.GetByID(ctx, id)
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("lr.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Status != nil {
		c.add("lr.status = $%d", *filter.Status)
	}
	if filter.LeaveType != nil {
		c.add("lr.leave_type = $%d", *filter.LeaveType)
	}
	// Overlap with [From, To].
	if filter.From != nil {
		c.add("lr.end_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		c.add("lr.start_date <= $%d", *filter.To)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM leave_requests lr WHERE " + c.where()
	if err := q.QueryRow(ctx, countQuery, c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	limitClause, args := c.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		INNER JOIN employees e ON lr.employee_id = e.id
		WHERE %s
		ORDER BY lr.created_at DESC, lr.id DESC
		%s`, leaveRequestColumns, c.where(), limitClause), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating leave requests: %w", err)
	}

	return requests, total, nil
}
