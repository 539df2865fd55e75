package attendance

import (
	"context"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create returns ErrAttendanceExists when the employee already has a record for that date.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id int64) (Attendance, error)

	// GetByEmployeeAndDate returns nil when the employee has no record for date.
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date civil.Date) (*Attendance, error)

	// Update writes the record if its Version is still current.
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListOpenBefore returns records still open from days before date.
	ListOpenBefore(ctx context.Context, date civil.Date) ([]Attendance, error)
}
