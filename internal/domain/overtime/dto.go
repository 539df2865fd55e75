package overtime

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var (
	maxHoursPerDay    = decimal.NewFromInt(24)
	minRateMultiplier = decimal.NewFromInt(1)
	maxRateMultiplier = decimal.NewFromInt(5)
)

// Hours and multipliers are stored as NUMERIC(5,2) and NUMERIC(4,2).
const decimalPlaces = 2

type SubmitOvertimeRequest struct {
	Date           string          `json:"date"` // YYYY-MM-DD
	Hours          decimal.Decimal `json:"hours"`
	RateMultiplier decimal.Decimal `json:"rate_multiplier"`
	Reason         string          `json:"reason"`

	ParsedDate civil.Date `json:"-"`
}

func (r *SubmitOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs.Add("date", "date is required")
	} else if d, ok := validator.IsValidDate(r.Date); ok {
		r.ParsedDate = d
	} else {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	if !validator.InRange(r.Hours, decimal.Zero, maxHoursPerDay) {
		errs.Add("hours", "hours must be greater than 0 and at most 24")
	} else if !validator.HasMaxPlaces(r.Hours, decimalPlaces) {
		errs.Add("hours", "hours must have at most 2 decimal places")
	}

	if r.RateMultiplier.IsZero() {
		r.RateMultiplier = decimal.RequireFromString("1.5")
	}
	if r.RateMultiplier.LessThan(minRateMultiplier) || r.RateMultiplier.GreaterThan(maxRateMultiplier) {
		errs.Add("rate_multiplier", "rate_multiplier must be between 1 and 5")
	} else if !validator.HasMaxPlaces(r.RateMultiplier, decimalPlaces) {
		errs.Add("rate_multiplier", "rate_multiplier must have at most 2 decimal places")
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

type DecideOvertimeRequest struct {
	ID     int64  `json:"-"`
	Status string `json:"status"` // approved, rejected
}

func (r *DecideOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	validStatuses := []string{string(OvertimeStatusApproved), string(OvertimeStatusRejected)}
	if !validator.IsInSlice(r.Status, validStatuses) {
		errs.Add("status", "status must be one of: approved, rejected")
	}

	return errs.Err()
}

type OvertimeFilter struct {
	EmployeeID *int64  `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	From *civil.Date `json:"-"`
	To   *civil.Date `json:"-"`
}

func (f *OvertimeFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePagination(&f.Page, &f.Limit, &errs)
	f.From, f.To = validator.ValidateDateRange(f.StartDate, f.EndDate, &errs)

	if f.Status != nil {
		validStatuses := []string{
			string(OvertimeStatusPending),
			string(OvertimeStatusApproved),
			string(OvertimeStatusRejected),
		}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs.Add("status", "status must be one of: pending, approved, rejected")
		}
	}

	return errs.Err()
}

// Matches applies the non-paging parts of the filter to one record.
func (f OvertimeFilter) Matches(r OvertimeRecord) bool {
	if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Status != nil && string(r.Status) != *f.Status {
		return false
	}
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	return true
}

type OvertimeResponse struct {
	ID             int64           `json:"id"`
	EmployeeID     int64           `json:"employee_id"`
	EmployeeName   *string         `json:"employee_name,omitempty"`
	Date           string          `json:"date"`
	Hours          decimal.Decimal `json:"hours"`
	RateMultiplier decimal.Decimal `json:"rate_multiplier"`
	Reason         string          `json:"reason"`
	Status         string          `json:"status"`
	ApprovedBy     *int64          `json:"approved_by,omitempty"`
	DecidedAt      *string         `json:"decided_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

func ToResponse(r OvertimeRecord) OvertimeResponse {
	resp := OvertimeResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		Date:           r.Date.String(),
		Hours:          r.Hours,
		RateMultiplier: r.RateMultiplier,
		Reason:         r.Reason,
		Status:         string(r.Status),
		ApprovedBy:     r.ApprovedBy,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}

type ListOvertimeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Records    []OvertimeResponse `json:"records"`
}
