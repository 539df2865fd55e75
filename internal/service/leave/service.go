package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	clock clock.Clock
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
	clk clock.Clock,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRequestRepository,
		EmployeeRepository:     employeeRepository,
		clock:                  clk,
	}
}

// SubmitLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) SubmitLeave(ctx context.Context, req leave.SubmitLeaveRequest) (leave.LeaveRequestResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := principal.Require(user.PermissionLeaveCreate); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.EmployeeRepository.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	now := l.clock.Now()
	created, err := l.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID: principal.EmployeeID,
		StartDate:  req.ParsedStart,
		EndDate:    req.ParsedEnd,
		Reason:     req.Reason,
		LeaveType:  leave.LeaveType(req.LeaveType),
		Status:     leave.LeaveRequestStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	created.EmployeeName = &emp.Name

	return leave.ToResponse(created), nil
}

// DecideLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) DecideLeave(ctx context.Context, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := principal.Require(user.PermissionLeaveApprove); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var decided leave.LeaveRequest
	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := l.LeaveRequestRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if request.Status != leave.LeaveRequestStatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		now := l.clock.Now()
		request.Status = leave.LeaveRequestStatus(req.Status)
		request.DecidedBy = &principal.EmployeeID
		request.DecidedAt = &now
		request.UpdatedAt = now

		decided, err = l.LeaveRequestRepository.Update(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	slog.Info("Leave request decided", "leave_request_id", decided.ID, "status", decided.Status, "decided_by", principal.EmployeeID)
	return leave.ToResponse(decided), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, id int64) (leave.LeaveRequestResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := principal.IsSelfOr(request.EmployeeID, user.PermissionLeaveViewAll); err != nil {
		// Other employees' requests are reported as missing
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}

	return leave.ToResponse(request), nil
}

// GetMyLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) GetMyLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	if err := principal.Require(user.PermissionLeaveViewOwn); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	filter.EmployeeID = &principal.EmployeeID
	return l.list(ctx, filter)
}

// ListLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	if err := principal.Require(user.PermissionLeaveViewAll); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	return l.list(ctx, filter)
}

func (l *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, leave.ToResponse(request))
	}

	totalPages, showing := pagination.Summary(filter.Page, filter.Limit, total)
	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    totalPages,
		Showing:       showing,
		LeaveRequests: responses,
	}, nil
}
