package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's cycle for the authenticated employee
	CheckIn(ctx context.Context) (AttendanceResponse, error)

	// CheckOut closes today's open cycle for the authenticated employee
	CheckOut(ctx context.Context) (AttendanceResponse, error)

	// GetStatus reports today's record and which transition is allowed next
	GetStatus(ctx context.Context) (StatusResponse, error)

	// GetMyAttendance retrieves attendance records for authenticated employee
	GetMyAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (attendance.view_all)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// AdminOverride sets check_in or check_out directly (attendance.override)
	AdminOverride(ctx context.Context, req AdminOverrideRequest) (AttendanceResponse, error)

	// CloseStaleSessions closes records left open on earlier days; run by the scheduler
	CloseStaleSessions(ctx context.Context) (int, error)
}
