package employee

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusAway      Status = "away"
	StatusOffline   Status = "offline"
)

var Statuses = []string{string(StatusAvailable), string(StatusBusy), string(StatusAway), string(StatusOffline)}

// Employee is also the login account. Employees are never hard-deleted.
type Employee struct {
	ID                  int64
	EmployeeCode        string // immutable after creation
	Name                string
	Email               string // unique, stored lower-case
	PasswordHash        string
	Department          string
	Designation         string
	Role                user.Role
	Status              Status
	AvatarURL           *string
	OrganizationLogoURL *string
	BaseSalary          *decimal.Decimal
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
