package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	clock clock.Clock
	loc   *time.Location
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	clk clock.Clock,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		clock:                clk,
		loc:                  loc,
	}
}

// today is the organisation's calendar date at now.
func (a *AttendanceServiceImpl) today(now time.Time) civil.Date {
	return civil.DateOf(now, a.loc)
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context) (attendance.AttendanceResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := principal.Require(user.PermissionAttendanceCreate); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var record attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := a.clock.Now()
		today := a.today(now)

		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, principal.EmployeeID, today)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}

		switch attendance.StateOf(existing) {
		case attendance.StateCheckedIn:
			return attendance.ErrAlreadyCheckedIn
		case attendance.StateCheckedOut:
			return attendance.ErrCycleComplete
		}

		if existing != nil {
			existing.CheckIn = &now
			existing.UpdatedAt = now
			record, err = a.AttendanceRepository.Update(ctx, *existing)
			return err
		}

		record, err = a.AttendanceRepository.Create(ctx, attendance.Attendance{
			EmployeeID: principal.EmployeeID,
			Date:       today,
			CheckIn:    &now,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(record, a.loc), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context) (attendance.AttendanceResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := principal.Require(user.PermissionAttendanceCreate); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var record attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := a.clock.Now()

		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, principal.EmployeeID, a.today(now))
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}
		if attendance.StateOf(existing) != attendance.StateCheckedIn {
			return attendance.ErrNoActiveCheckIn
		}

		existing.CheckOut = &now
		existing.UpdatedAt = now
		existing.RecomputeWorkHours()

		record, err = a.AttendanceRepository.Update(ctx, *existing)
		if err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.ToResponse(record, a.loc), nil
}

// GetStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetStatus(ctx context.Context) (attendance.StatusResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.StatusResponse{}, err
	}
	if err := principal.Require(user.PermissionAttendanceViewOwn); err != nil {
		return attendance.StatusResponse{}, err
	}

	today := a.today(a.clock.Now())
	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, principal.EmployeeID, today)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	state := attendance.StateOf(existing)
	resp := attendance.StatusResponse{
		Date:        today.String(),
		State:       string(state),
		CanCheckIn:  state == attendance.StateNoRecord,
		CanCheckOut: state == attendance.StateCheckedIn,
	}
	if existing != nil {
		record := attendance.ToResponse(*existing, a.loc)
		resp.Record = &record
	}
	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := principal.Require(user.PermissionAttendanceViewOwn); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	filter.EmployeeID = &principal.EmployeeID
	return a.list(ctx, filter)
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if err := principal.Require(user.PermissionAttendanceViewAll); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	return a.list(ctx, filter)
}

func (a *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, attendance.ToResponse(record, a.loc))
	}

	totalPages, showing := pagination.Summary(filter.Page, filter.Limit, total)
	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// AdminOverride implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AdminOverride(ctx context.Context, req attendance.AdminOverrideRequest) (attendance.AttendanceResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := principal.Require(user.PermissionAttendanceOverride); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var record attendance.Attendance
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
			return err
		}

		now := a.clock.Now()
		date := a.today(now)
		if req.ParsedDate != nil {
			date = *req.ParsedDate
		}

		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}

		target := attendance.Attendance{EmployeeID: req.EmployeeID, Date: date, CreatedAt: now}
		if existing != nil {
			target = *existing
		}

		timestamp := req.ParsedTimestamp
		switch attendance.OverrideField(req.Field) {
		case attendance.FieldCheckIn:
			target.CheckIn = &timestamp
		case attendance.FieldCheckOut:
			target.CheckOut = &timestamp
		}
		target.RecomputeWorkHours()
		target.ModifiedBy = &principal.EmployeeID
		target.ModifiedAt = &now
		target.IsAdminOverride = true
		target.UpdatedAt = now

		if existing == nil {
			record, err = a.AttendanceRepository.Create(ctx, target)
		} else {
			record, err = a.AttendanceRepository.Update(ctx, target)
		}
		if err != nil {
			return fmt.Errorf("failed to save attendance override: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Attendance overridden",
		"attendance_id", record.ID,
		"employee_id", record.EmployeeID,
		"field", req.Field,
		"modified_by", principal.EmployeeID,
	)
	return attendance.ToResponse(record, a.loc), nil
}

// CloseStaleSessions closes every record still open from a day before today
// at the end of that day. It runs without a caller, so it is not part of
// attendance.AttendanceService.
func (a *AttendanceServiceImpl) CloseStaleSessions(ctx context.Context) (int, error) {
	now := a.clock.Now()
	today := a.today(now)

	stale, err := a.AttendanceRepository.ListOpenBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list open attendance: %w", err)
	}

	closed := 0
	for _, record := range stale {
		err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			current, err := a.AttendanceRepository.GetByID(ctx, record.ID)
			if err != nil {
				return err
			}
			if !current.IsOpen() {
				return nil
			}

			end := current.Date.EndIn(a.loc)
			current.CheckOut = &end
			current.RecomputeWorkHours()
			current.ModifiedBy = nil
			current.ModifiedAt = &now
			current.IsAdminOverride = true
			current.UpdatedAt = now

			_, err = a.AttendanceRepository.Update(ctx, current)
			return err
		})
		if err != nil {
			slog.Warn("Failed to close stale attendance", "attendance_id", record.ID, "error", err)
			continue
		}
		closed++
	}
	return closed, nil
}
