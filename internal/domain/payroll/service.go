package payroll

import "context"

type PayrollService interface {
	// ProcessPayroll computes and stores an employee's pay for a month (payroll.process).
	// Calling it again recomputes the same record until it is paid.
	ProcessPayroll(ctx context.Context, req ProcessPayrollRequest) (PayrollRecordResponse, error)

	// CreateDraft reserves a period for an employee without computing it (payroll.process)
	CreateDraft(ctx context.Context, req CreateDraftRequest) (PayrollRecordResponse, error)

	// MarkPaid moves a processed record to paid (payroll.pay)
	MarkPaid(ctx context.Context, id int64) (PayrollRecordResponse, error)

	GetPayrollRecord(ctx context.Context, id int64) (PayrollRecordResponse, error)
	GetMyPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	GetPayrollSummary(ctx context.Context, req PeriodRequest) (PayrollSummaryResponse, error)

	// ExportPayroll renders a month's records as an XLSX workbook
	ExportPayroll(ctx context.Context, req PeriodRequest) (ExportFile, error)
}
