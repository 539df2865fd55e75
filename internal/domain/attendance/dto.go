package attendance

import (
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

type AttendanceResponse struct {
	ID                 int64    `json:"id"`
	EmployeeID         int64    `json:"employee_id"`
	EmployeeName       *string  `json:"employee_name,omitempty"`
	EmployeeCode       *string  `json:"employee_code,omitempty"`
	Date               string   `json:"date"`
	CheckIn            *string  `json:"check_in,omitempty"`
	CheckOut           *string  `json:"check_out,omitempty"`
	WorkHoursInMinutes *int     `json:"work_hours_in_minutes,omitempty"`
	WorkingHours       *float64 `json:"working_hours,omitempty"`
	State              string   `json:"state"`
	IsAdminOverride    bool     `json:"is_admin_override"`
	ModifiedBy         *int64   `json:"modified_by,omitempty"`
	ModifiedAt         *string  `json:"modified_at,omitempty"`
}

type StatusResponse struct {
	Date        string              `json:"date"`
	State       string              `json:"state"`
	CanCheckIn  bool                `json:"can_check_in"`
	CanCheckOut bool                `json:"can_check_out"`
	Record      *AttendanceResponse `json:"record,omitempty"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func ToResponse(a Attendance, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                 a.ID,
		EmployeeID:         a.EmployeeID,
		EmployeeName:       a.EmployeeName,
		EmployeeCode:       a.EmployeeCode,
		Date:               a.Date.String(),
		CheckIn:            timePtrToString(a.CheckIn, loc),
		CheckOut:           timePtrToString(a.CheckOut, loc),
		WorkHoursInMinutes: a.WorkHoursInMinutes,
		State:              string(StateOf(&a)),
		IsAdminOverride:    a.IsAdminOverride,
		ModifiedBy:         a.ModifiedBy,
		ModifiedAt:         timePtrToString(a.ModifiedAt, loc),
	}
	if a.WorkHoursInMinutes != nil {
		hours := float64(*a.WorkHoursInMinutes) / 60
		resp.WorkingHours = &hours
	}
	return resp
}

func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}

// AttendanceFilter is shared by the self-service and admin listings; the
// service pins EmployeeID for self-service calls.
type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *int64  `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	State      *string `json:"state,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc by date

	// Parsed by Validate
	From *civil.Date `json:"-"`
	To   *civil.Date `json:"-"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePagination(&f.Page, &f.Limit, &errs)

	if f.Date != nil && *f.Date != "" {
		f.StartDate, f.EndDate = f.Date, f.Date
	}
	f.From, f.To = validator.ValidateDateRange(f.StartDate, f.EndDate, &errs)

	if f.State != nil {
		validStates := []string{string(StateCheckedIn), string(StateCheckedOut)}
		if !validator.IsInSlice(*f.State, validStates) {
			errs.Add("state", "state must be one of: checked_in, checked_out")
		}
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	return errs.Err()
}

// Matches applies the non-paging parts of the filter to one record.
func (f AttendanceFilter) Matches(a Attendance) bool {
	if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	if f.State != nil && string(StateOf(&a)) != *f.State {
		return false
	}
	return true
}

// AdminOverrideRequest sets one timestamp of an employee's day regardless of
// the check-in/check-out rules.
type AdminOverrideRequest struct {
	EmployeeID int64  `json:"employee_id"`
	Field      string `json:"field"`          // check_in, check_out
	Timestamp  string `json:"timestamp"`      // RFC3339
	Date       string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today

	ParsedTimestamp time.Time   `json:"-"`
	ParsedDate      *civil.Date `json:"-"`
}

func (r *AdminOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs.Add("employee_id", "employee_id is required")
	}

	if !validator.IsInSlice(r.Field, []string{string(FieldCheckIn), string(FieldCheckOut)}) {
		errs.Add("field", "field must be one of: check_in, check_out")
	}

	if validator.IsEmpty(r.Timestamp) {
		errs.Add("timestamp", "timestamp is required")
	} else if t, ok := validator.IsValidDateTime(r.Timestamp); ok {
		r.ParsedTimestamp = t
	} else {
		errs.Add("timestamp", "timestamp must be in ISO8601 format (e.g., 2024-01-15T09:00:00+07:00)")
	}

	if r.Date != "" {
		if d, ok := validator.IsValidDate(r.Date); ok {
			r.ParsedDate = &d
		} else {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}
