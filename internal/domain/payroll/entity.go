package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus enum, moves forward only: draft -> processed -> paid
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "draft"
	PayrollStatusProcessed PayrollStatus = "processed"
	PayrollStatusPaid      PayrollStatus = "paid"
)

// PayrollRecord - one employee's pay for one month.
// At most one exists per (EmployeeID, PeriodMonth, PeriodYear).
type PayrollRecord struct {
	ID            int64
	EmployeeID    int64
	PeriodMonth   int
	PeriodYear    int
	BaseSalary    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Bonus         decimal.Decimal
	Deductions    decimal.Decimal
	NetSalary     decimal.Decimal
	Status        PayrollStatus
	ProcessedAt   *time.Time
	PaidAt        *time.Time
	PaidBy        *int64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Department   *string
}

// Components is the computed breakdown of one payroll record.
type Components struct {
	BaseSalary    decimal.Decimal
	OvertimeHours decimal.Decimal
	OvertimePay   decimal.Decimal
	Bonus         decimal.Decimal
	Deductions    decimal.Decimal
	NetSalary     decimal.Decimal
}

// Apply copies the computed amounts onto the record.
func (r *PayrollRecord) Apply(c Components) {
	r.BaseSalary = c.BaseSalary
	r.OvertimeHours = c.OvertimeHours
	r.OvertimePay = c.OvertimePay
	r.Bonus = c.Bonus
	r.Deductions = c.Deductions
	r.NetSalary = c.NetSalary
}
