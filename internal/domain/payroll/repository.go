package payroll

import "context"

// PayrollRepository defines data access methods for payroll records.
type PayrollRepository interface {
	// CreatePayrollRecord returns ErrPayrollRecordAlreadyExists when the period is taken.
	CreatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetPayrollRecordByID(ctx context.Context, id int64) (PayrollRecord, error)
	GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID int64, month, year int) (PayrollRecord, error)
	// ListPayrollRecords pages with filter.Page/Limit; Limit 0 returns every match.
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	// UpdatePayrollRecord writes the record if its Version is still current.
	UpdatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
}
