package overtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
)

type OvertimeServiceImpl struct {
	tx database.Transactor
	overtime.OvertimeRepository
	employee.EmployeeRepository
	clock clock.Clock
}

func NewOvertimeService(
	tx database.Transactor,
	overtimeRepository overtime.OvertimeRepository,
	employeeRepository employee.EmployeeRepository,
	clk clock.Clock,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		tx:                 tx,
		OvertimeRepository: overtimeRepository,
		EmployeeRepository: employeeRepository,
		clock:              clk,
	}
}

func (s *OvertimeServiceImpl) SubmitOvertime(ctx context.Context, req overtime.SubmitOvertimeRequest) (overtime.OvertimeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := principal.Require(user.PermissionOvertimeCreate); err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	now := s.clock.Now()
	created, err := s.OvertimeRepository.Create(ctx, overtime.OvertimeRecord{
		EmployeeID:     principal.EmployeeID,
		Date:           req.ParsedDate,
		Hours:          req.Hours,
		RateMultiplier: req.RateMultiplier,
		Reason:         req.Reason,
		Status:         overtime.OvertimeStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return overtime.OvertimeResponse{}, fmt.Errorf("failed to create overtime record: %w", err)
	}
	created.EmployeeName = &emp.Name

	return overtime.ToResponse(created), nil
}

func (s *OvertimeServiceImpl) DecideOvertime(ctx context.Context, req overtime.DecideOvertimeRequest) (overtime.OvertimeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := principal.Require(user.PermissionOvertimeApprove); err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	var decided overtime.OvertimeRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.OvertimeRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if record.Status != overtime.OvertimeStatusPending {
			return overtime.ErrOvertimeAlreadyDecided
		}

		now := s.clock.Now()
		record.Status = overtime.OvertimeStatus(req.Status)
		record.ApprovedBy = &principal.EmployeeID
		record.DecidedAt = &now
		record.UpdatedAt = now

		decided, err = s.OvertimeRepository.Update(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to update overtime record: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	slog.Info("Overtime decided", "overtime_id", decided.ID, "status", decided.Status, "approved_by", principal.EmployeeID)
	return overtime.ToResponse(decided), nil
}

func (s *OvertimeServiceImpl) GetOvertime(ctx context.Context, id int64) (overtime.OvertimeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	record, err := s.OvertimeRepository.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	if err := principal.IsSelfOr(record.EmployeeID, user.PermissionOvertimeViewAll); err != nil {
		return overtime.OvertimeResponse{}, overtime.ErrOvertimeRecordNotFound
	}

	return overtime.ToResponse(record), nil
}

func (s *OvertimeServiceImpl) GetMyOvertime(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return overtime.ListOvertimeResponse{}, err
	}
	if err := principal.Require(user.PermissionOvertimeViewOwn); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	filter.EmployeeID = &principal.EmployeeID
	return s.list(ctx, filter)
}

func (s *OvertimeServiceImpl) ListOvertime(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return overtime.ListOvertimeResponse{}, err
	}
	if err := principal.Require(user.PermissionOvertimeViewAll); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	return s.list(ctx, filter)
}

func (s *OvertimeServiceImpl) list(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListOvertimeResponse{}, err
	}

	records, total, err := s.OvertimeRepository.List(ctx, filter)
	if err != nil {
		return overtime.ListOvertimeResponse{}, fmt.Errorf("failed to list overtime: %w", err)
	}

	responses := make([]overtime.OvertimeResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, overtime.ToResponse(record))
	}

	totalPages, showing := pagination.Summary(filter.Page, filter.Limit, total)
	return overtime.ListOvertimeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    responses,
	}, nil
}
