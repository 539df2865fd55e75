package payroll

import (
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type PeriodRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs.Add("period_month", "must be between 1 and 12")
	}
	if !validator.IsValidPeriod(1, r.PeriodYear) {
		errs.Add("period_year", "must be between 2000 and 2100")
	}

	return errs.Err()
}

type ProcessPayrollRequest struct {
	EmployeeID int64 `json:"employee_id"`
	PeriodRequest
}

func (r *ProcessPayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs.Add("employee_id", "employee_id is required")
	}
	if err := r.PeriodRequest.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}

	return errs.Err()
}

type CreateDraftRequest = ProcessPayrollRequest

type PayrollRecordResponse struct {
	ID            int64           `json:"id"`
	EmployeeID    int64           `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	EmployeeCode  *string         `json:"employee_code,omitempty"`
	Department    *string         `json:"department,omitempty"`
	PeriodMonth   int             `json:"period_month"`
	PeriodYear    int             `json:"period_year"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	Bonus         decimal.Decimal `json:"bonus"`
	Deductions    decimal.Decimal `json:"deductions"`
	NetSalary     decimal.Decimal `json:"net_salary"`
	Status        string          `json:"status"`
	ProcessedAt   *string         `json:"processed_at,omitempty"`
	PaidAt        *string         `json:"paid_at,omitempty"`
	PaidBy        *int64          `json:"paid_by,omitempty"`
}

func ToResponse(r PayrollRecord) PayrollRecordResponse {
	return PayrollRecordResponse{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		EmployeeCode:  r.EmployeeCode,
		Department:    r.Department,
		PeriodMonth:   r.PeriodMonth,
		PeriodYear:    r.PeriodYear,
		BaseSalary:    r.BaseSalary,
		OvertimeHours: r.OvertimeHours,
		OvertimePay:   r.OvertimePay,
		Bonus:         r.Bonus,
		Deductions:    r.Deductions,
		NetSalary:     r.NetSalary,
		Status:        string(r.Status),
		ProcessedAt:   formatTime(r.ProcessedAt),
		PaidAt:        formatTime(r.PaidAt),
		PaidBy:        r.PaidBy,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type PayrollFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	EmployeeID  *int64  `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	SortOrder   string  `json:"sort_order"` // by period
}

func (f *PayrollFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePagination(&f.Page, &f.Limit, &errs)

	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs.Add("period_month", "must be between 1 and 12")
	}
	if f.Status != nil {
		validStatuses := []string{string(PayrollStatusDraft), string(PayrollStatusProcessed), string(PayrollStatusPaid)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs.Add("status", "status must be one of: draft, processed, paid")
		}
	}
	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc"
	}

	return errs.Err()
}

// Matches applies the non-paging parts of the filter to one record.
func (f PayrollFilter) Matches(r PayrollRecord) bool {
	if f.PeriodMonth != nil && r.PeriodMonth != *f.PeriodMonth {
		return false
	}
	if f.PeriodYear != nil && r.PeriodYear != *f.PeriodYear {
		return false
	}
	if f.Status != nil && string(r.Status) != *f.Status {
		return false
	}
	if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
		return false
	}
	return true
}

type ListPayrollRecordResponse struct {
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
	Showing    string                  `json:"showing"`
	Records    []PayrollRecordResponse `json:"records"`
}

type PayrollSummaryResponse struct {
	PeriodMonth      int             `json:"period_month"`
	PeriodYear       int             `json:"period_year"`
	TotalEmployees   int             `json:"total_employees"`
	TotalBaseSalary  decimal.Decimal `json:"total_base_salary"`
	TotalOvertimePay decimal.Decimal `json:"total_overtime_pay"`
	TotalBonus       decimal.Decimal `json:"total_bonus"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	DraftCount       int             `json:"draft_count"`
	ProcessedCount   int             `json:"processed_count"`
	PaidCount        int             `json:"paid_count"`
}

// ExportFile is a rendered report ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
