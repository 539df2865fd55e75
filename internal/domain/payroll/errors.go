package payroll

import "errors"

var (
	ErrPayrollRecordNotFound      = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists = errors.New("payroll record already exists for this period")
	ErrPayrollAlreadyPaid         = errors.New("payroll record already paid, cannot modify")
	ErrPayrollNotProcessed        = errors.New("payroll record must be processed before it can be paid")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
)
