package leave

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
)

type LeaveType string

const (
	LeaveTypeAnnual   LeaveType = "annual"
	LeaveTypeSick     LeaveType = "sick"
	LeaveTypePersonal LeaveType = "personal"
	LeaveTypeUnpaid   LeaveType = "unpaid"
	LeaveTypeOther    LeaveType = "other"
)

var LeaveTypes = []string{
	string(LeaveTypeAnnual),
	string(LeaveTypeSick),
	string(LeaveTypePersonal),
	string(LeaveTypeUnpaid),
	string(LeaveTypeOther),
}

// LeaveRequestStatus moves only from pending to approved or rejected.
type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

type LeaveRequest struct {
	ID         int64
	EmployeeID int64
	StartDate  civil.Date
	EndDate    civil.Date
	Reason     string
	LeaveType  LeaveType
	Status     LeaveRequestStatus
	DecidedBy  *int64
	DecidedAt  *time.Time
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	EmployeeName *string
}

// TotalDays counts calendar days, both ends inclusive.
func (r LeaveRequest) TotalDays() int {
	return int(r.EndDate.In(time.UTC).Sub(r.StartDate.In(time.UTC)).Hours()/24) + 1
}
