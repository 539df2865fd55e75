package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var permissionErr *user.PermissionError
	if errors.As(err, &permissionErr) {
		Forbidden(w, permissionErr.Error())
		return
	}

	switch {
	// Auth
	case errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidResetToken):
		BadRequest(w, "Password reset token is invalid or expired", nil)

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmailAlreadyRegistered):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrCannotChangeOwnRole):
		BadRequest(w, err.Error(), nil)

	// Registration codes
	case errors.Is(err, registration.ErrInvalidOrExpiredCode):
		BadRequest(w, "Registration code is invalid or expired", nil)
	case errors.Is(err, registration.ErrCodeGenerationFailed):
		ServiceUnavailable(w, err.Error())

	// Attendance
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrCycleComplete),
		errors.Is(err, attendance.ErrAttendanceExists):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNoActiveCheckIn):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Leave and overtime
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, overtime.ErrOvertimeRecordNotFound):
		NotFound(w, "Overtime record not found")
	case errors.Is(err, overtime.ErrOvertimeAlreadyDecided):
		Conflict(w, err.Error())

	// Payroll
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists),
		errors.Is(err, payroll.ErrPayrollAlreadyPaid),
		errors.Is(err, payroll.ErrPayrollNotProcessed):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)

	// Storage
	case errors.Is(err, database.ErrConcurrentUpdate):
		Conflict(w, "The record was changed by another request, please retry")
	case errors.Is(err, recordstore.ErrLockTimeout), errors.Is(err, recordstore.ErrUnavailable):
		ServiceUnavailable(w, "The service is busy, please retry")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
