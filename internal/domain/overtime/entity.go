package overtime

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/shopspring/decimal"
)

// OvertimeStatus moves only from pending to approved or rejected.
type OvertimeStatus string

const (
	OvertimeStatusPending  OvertimeStatus = "pending"
	OvertimeStatusApproved OvertimeStatus = "approved"
	OvertimeStatusRejected OvertimeStatus = "rejected"
)

type OvertimeRecord struct {
	ID             int64
	EmployeeID     int64
	Date           civil.Date
	Hours          decimal.Decimal
	RateMultiplier decimal.Decimal // 1.5 = time and a half
	Reason         string
	Status         OvertimeStatus
	ApprovedBy     *int64 // whoever decided, approved or rejected
	DecidedAt      *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO
	EmployeeName *string
}
