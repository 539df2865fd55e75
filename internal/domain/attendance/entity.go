package attendance

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
)

// Attendance is one employee's check-in/check-out cycle for one calendar day.
// At most one exists per (EmployeeID, Date).
type Attendance struct {
	ID                 int64
	EmployeeID         int64
	Date               civil.Date
	CheckIn            *time.Time
	CheckOut           *time.Time
	WorkHoursInMinutes *int
	ModifiedBy         *int64 // nil with IsAdminOverride means a system correction
	ModifiedAt         *time.Time
	IsAdminOverride    bool
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
}

type State string

const (
	StateNoRecord   State = "no_record"
	StateCheckedIn  State = "checked_in"
	StateCheckedOut State = "checked_out"
)

// StateOf returns the state of the day a (possibly nil) record describes.
func StateOf(a *Attendance) State {
	switch {
	case a == nil || (a.CheckIn == nil && a.CheckOut == nil):
		return StateNoRecord
	case a.CheckOut == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// IsOpen reports whether the record has a check-in but no check-out.
func (a Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// RecomputeWorkHours refreshes WorkHoursInMinutes from the two timestamps.
func (a *Attendance) RecomputeWorkHours() {
	if a.CheckIn == nil || a.CheckOut == nil || a.CheckOut.Before(*a.CheckIn) {
		a.WorkHoursInMinutes = nil
		return
	}
	minutes := int(a.CheckOut.Sub(*a.CheckIn).Minutes())
	a.WorkHoursInMinutes = &minutes
}

type OverrideField string

const (
	FieldCheckIn  OverrideField = "check_in"
	FieldCheckOut OverrideField = "check_out"
)
