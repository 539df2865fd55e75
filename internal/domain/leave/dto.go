package leave

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

type SubmitLeaveRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason"`
	LeaveType string `json:"leave_type"`

	ParsedStart civil.Date `json:"-"`
	ParsedEnd   civil.Date `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	var startOK, endOK bool
	if validator.IsEmpty(r.StartDate) {
		errs.Add("start_date", "start_date is required")
	} else if r.ParsedStart, startOK = validator.IsValidDate(r.StartDate); !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}

	if validator.IsEmpty(r.EndDate) {
		errs.Add("end_date", "end_date is required")
	} else if r.ParsedEnd, endOK = validator.IsValidDate(r.EndDate); !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}

	if startOK && endOK && r.ParsedEnd.Before(r.ParsedStart) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	if !validator.IsInSlice(r.LeaveType, LeaveTypes) {
		errs.Add("leave_type", "leave_type must be one of: annual, sick, personal, unpaid, other")
	}

	return errs.Err()
}

type DecideLeaveRequest struct {
	ID     int64  `json:"-"`
	Status string `json:"status"` // approved, rejected
}

func (r *DecideLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	validStatuses := []string{string(LeaveRequestStatusApproved), string(LeaveRequestStatusRejected)}
	if !validator.IsInSlice(r.Status, validStatuses) {
		errs.Add("status", "status must be one of: approved, rejected")
	}

	return errs.Err()
}

type LeaveRequestFilter struct {
	EmployeeID *int64  `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	LeaveType  *string `json:"leave_type,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // requests overlapping [start_date, end_date]
	EndDate    *string `json:"end_date,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	From *civil.Date `json:"-"`
	To   *civil.Date `json:"-"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePagination(&f.Page, &f.Limit, &errs)
	f.From, f.To = validator.ValidateDateRange(f.StartDate, f.EndDate, &errs)

	if f.Status != nil {
		validStatuses := []string{
			string(LeaveRequestStatusPending),
			string(LeaveRequestStatusApproved),
			string(LeaveRequestStatusRejected),
		}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs.Add("status", "status must be one of: pending, approved, rejected")
		}
	}
	if f.LeaveType != nil && !validator.IsInSlice(*f.LeaveType, LeaveTypes) {
		errs.Add("leave_type", "leave_type must be one of: annual, sick, personal, unpaid, other")
	}

	return errs.Err()
}

// Matches applies the non-paging parts of the filter to one request.
func (f LeaveRequestFilter) Matches(r LeaveRequest) bool {
	if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Status != nil && string(r.Status) != *f.Status {
		return false
	}
	if f.LeaveType != nil && string(r.LeaveType) != *f.LeaveType {
		return false
	}
	if f.From != nil && r.EndDate.Before(*f.From) {
		return false
	}
	if f.To != nil && r.StartDate.After(*f.To) {
		return false
	}
	return true
}

type LeaveRequestResponse struct {
	ID           int64   `json:"id"`
	EmployeeID   int64   `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalDays    int     `json:"total_days"`
	Reason       string  `json:"reason"`
	LeaveType    string  `json:"leave_type"`
	Status       string  `json:"status"`
	DecidedBy    *int64  `json:"decided_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func ToResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		StartDate:    r.StartDate.String(),
		EndDate:      r.EndDate.String(),
		TotalDays:    r.TotalDays(),
		Reason:       r.Reason,
		LeaveType:    string(r.LeaveType),
		Status:       string(r.Status),
		DecidedBy:    r.DecidedBy,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		s := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	Showing       string                 `json:"showing"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}
