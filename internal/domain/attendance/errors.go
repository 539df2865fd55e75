package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn = errors.New("you have already checked in today")
	ErrCycleComplete    = errors.New("you have already checked in and out today")
	ErrNoActiveCheckIn  = errors.New("you haven't checked in yet today")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("attendance record already exists for this day")
)
