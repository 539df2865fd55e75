package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/export"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	overtimeRepo overtime.OvertimeRepository
	calculator   *Calculator
	clock        clock.Clock
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	overtimeRepo overtime.OvertimeRepository,
	calculator *Calculator,
	clk clock.Clock,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		overtimeRepo: overtimeRepo,
		calculator:   calculator,
		clock:        clk,
	}
}

// ========== PROCESSING ==========

// ProcessPayroll reads the approved overtime and writes the record in one transaction.
func (s *PayrollServiceImpl) ProcessPayroll(ctx context.Context, req payroll.ProcessPayrollRequest) (payroll.PayrollRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := principal.Require(user.PermissionPayrollProcess); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var saved payroll.PayrollRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		approved, err := s.overtimeRepo.ListApprovedInPeriod(ctx, emp.ID, req.PeriodMonth, req.PeriodYear)
		if err != nil {
			return fmt.Errorf("failed to get approved overtime: %w", err)
		}
		components := s.calculator.Calculate(emp, req.PeriodMonth, req.PeriodYear, approved)

		now := s.clock.Now()
		existing, err := s.payrollRepo.GetPayrollRecordByEmployeePeriod(ctx, emp.ID, req.PeriodMonth, req.PeriodYear)
		switch {
		case errors.Is(err, payroll.ErrPayrollRecordNotFound):
			record := payroll.PayrollRecord{
				EmployeeID:  emp.ID,
				PeriodMonth: req.PeriodMonth,
				PeriodYear:  req.PeriodYear,
				Status:      payroll.PayrollStatusProcessed,
				ProcessedAt: &now,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			record.Apply(components)
			saved, err = s.payrollRepo.CreatePayrollRecord(ctx, record)
			if err != nil {
				return fmt.Errorf("failed to create payroll record: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to get payroll record: %w", err)
		case existing.Status == payroll.PayrollStatusPaid:
			return payroll.ErrPayrollAlreadyPaid
		default:
			existing.Apply(components)
			existing.Status = payroll.PayrollStatusProcessed
			existing.ProcessedAt = &now
			existing.UpdatedAt = now
			saved, err = s.payrollRepo.UpdatePayrollRecord(ctx, existing)
			if err != nil {
				return fmt.Errorf("failed to update payroll record: %w", err)
			}
		}

		saved.EmployeeName, saved.EmployeeCode, saved.Department = &emp.Name, &emp.EmployeeCode, &emp.Department
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("Payroll processed",
		"payroll_id", saved.ID,
		"employee_id", saved.EmployeeID,
		"period", fmt.Sprintf("%04d-%02d", saved.PeriodYear, saved.PeriodMonth),
		"net_salary", saved.NetSalary.StringFixed(2),
	)
	return payroll.ToResponse(saved), nil
}

func (s *PayrollServiceImpl) CreateDraft(ctx context.Context, req payroll.CreateDraftRequest) (payroll.PayrollRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := principal.Require(user.PermissionPayrollProcess); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var created payroll.PayrollRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		created, err = s.payrollRepo.CreatePayrollRecord(ctx, payroll.PayrollRecord{
			EmployeeID:  emp.ID,
			PeriodMonth: req.PeriodMonth,
			PeriodYear:  req.PeriodYear,
			BaseSalary:  decimal.Zero,
			OvertimePay: decimal.Zero,
			Bonus:       decimal.Zero,
			Deductions:  decimal.Zero,
			NetSalary:   decimal.Zero,
			Status:      payroll.PayrollStatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		created.EmployeeName, created.EmployeeCode, created.Department = &emp.Name, &emp.EmployeeCode, &emp.Department
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return payroll.ToResponse(created), nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id int64) (payroll.PayrollRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := principal.Require(user.PermissionPayrollPay); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var paid payroll.PayrollRecord
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id)
		if err != nil {
			return err
		}

		switch record.Status {
		case payroll.PayrollStatusPaid:
			return payroll.ErrPayrollAlreadyPaid
		case payroll.PayrollStatusDraft:
			return payroll.ErrPayrollNotProcessed
		}

		now := s.clock.Now()
		record.Status = payroll.PayrollStatusPaid
		record.PaidAt = &now
		record.PaidBy = &principal.EmployeeID
		record.UpdatedAt = now

		paid, err = s.payrollRepo.UpdatePayrollRecord(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to mark payroll as paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("Payroll paid", "payroll_id", paid.ID, "employee_id", paid.EmployeeID, "paid_by", principal.EmployeeID)
	return payroll.ToResponse(paid), nil
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id int64) (payroll.PayrollRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if err := principal.IsSelfOr(record.EmployeeID, user.PermissionPayrollViewAll); err != nil {
		return payroll.PayrollRecordResponse{}, payroll.ErrPayrollRecordNotFound
	}

	return payroll.ToResponse(record), nil
}

func (s *PayrollServiceImpl) GetMyPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if err := principal.Require(user.PermissionPayrollViewOwn); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	filter.EmployeeID = &principal.EmployeeID
	return s.list(ctx, filter)
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}
	if err := principal.Require(user.PermissionPayrollViewAll); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	return s.list(ctx, filter)
}

func (s *PayrollServiceImpl) list(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	records, total, err := s.payrollRepo.ListPayrollRecords(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("failed to list payroll records: %w", err)
	}

	responses := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, payroll.ToResponse(record))
	}

	totalPages, showing := pagination.Summary(filter.Page, filter.Limit, total)
	return payroll.ListPayrollRecordResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Records:    responses,
	}, nil
}

// periodRecords returns every record of a period, oldest employee first.
func (s *PayrollServiceImpl) periodRecords(ctx context.Context, req payroll.PeriodRequest) ([]payroll.PayrollRecord, error) {
	records, _, err := s.payrollRepo.ListPayrollRecords(ctx, payroll.PayrollFilter{
		PeriodMonth: &req.PeriodMonth,
		PeriodYear:  &req.PeriodYear,
		Page:        1,
		SortOrder:   "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}
	return records, nil
}

func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, req payroll.PeriodRequest) (payroll.PayrollSummaryResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	if err := principal.Require(user.PermissionPayrollViewAll); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	records, err := s.periodRecords(ctx, req)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	summary := payroll.PayrollSummaryResponse{
		PeriodMonth:      req.PeriodMonth,
		PeriodYear:       req.PeriodYear,
		TotalEmployees:   len(records),
		TotalBaseSalary:  decimal.Zero,
		TotalOvertimePay: decimal.Zero,
		TotalBonus:       decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNetSalary:   decimal.Zero,
	}
	for _, r := range records {
		summary.TotalBaseSalary = summary.TotalBaseSalary.Add(r.BaseSalary)
		summary.TotalOvertimePay = summary.TotalOvertimePay.Add(r.OvertimePay)
		summary.TotalBonus = summary.TotalBonus.Add(r.Bonus)
		summary.TotalDeductions = summary.TotalDeductions.Add(r.Deductions)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(r.NetSalary)

		switch r.Status {
		case payroll.PayrollStatusDraft:
			summary.DraftCount++
		case payroll.PayrollStatusProcessed:
			summary.ProcessedCount++
		case payroll.PayrollStatusPaid:
			summary.PaidCount++
		}
	}

	return summary, nil
}

func (s *PayrollServiceImpl) ExportPayroll(ctx context.Context, req payroll.PeriodRequest) (payroll.ExportFile, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.ExportFile{}, err
	}
	if err := principal.Require(user.PermissionPayrollViewAll); err != nil {
		return payroll.ExportFile{}, err
	}
	if err := req.Validate(); err != nil {
		return payroll.ExportFile{}, err
	}

	records, err := s.periodRecords(ctx, req)
	if err != nil {
		return payroll.ExportFile{}, err
	}

	content, err := export.PayrollXLSX(req.PeriodMonth, req.PeriodYear, records)
	if err != nil {
		return payroll.ExportFile{}, fmt.Errorf("failed to render payroll export: %w", err)
	}

	return payroll.ExportFile{
		Filename:    export.PayrollFilename(req.PeriodMonth, req.PeriodYear),
		ContentType: export.XLSXContentType,
		Content:     content,
	}, nil
}
