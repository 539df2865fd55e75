package export

import (
	"fmt"

	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	payrollSheet    = "Payroll"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var payrollHeader = []interface{}{
	"Employee Code", "Employee", "Department", "Period",
	"Base Salary", "Overtime Hours", "Overtime Pay", "Bonus", "Deductions", "Net Salary",
	"Status", "Processed At", "Paid At",
}

// PayrollFilename is the download name of a period's workbook.
func PayrollFilename(month, year int) string {
	return fmt.Sprintf("payroll-%04d-%02d.xlsx", year, month)
}

// PayrollXLSX renders one row per record followed by a totals row.
func PayrollXLSX(month, year int, records []payroll.PayrollRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(payrollSheet, "A1", &payrollHeader); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	period := fmt.Sprintf("%04d-%02d", year, month)
	totals := make([]decimal.Decimal, 6)

	for i, r := range records {
		amounts := []decimal.Decimal{r.BaseSalary, r.OvertimeHours, r.OvertimePay, r.Bonus, r.Deductions, r.NetSalary}
		row := []interface{}{
			deref(r.EmployeeCode), deref(r.EmployeeName), deref(r.Department), period,
		}
		for j, amount := range amounts {
			row = append(row, amount.InexactFloat64())
			totals[j] = totals[j].Add(amount)
		}
		row = append(row, string(r.Status), formatTime(r.ProcessedAt), formatTime(r.PaidAt))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(payrollSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	totalRow := len(records) + 2
	totalsLine := []interface{}{"TOTAL", "", "", period}
	for _, total := range totals {
		totalsLine = append(totalsLine, total.InexactFloat64())
	}
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(payrollSheet, cell, &totalsLine); err != nil {
		return nil, err
	}

	if err := f.SetCellStyle(payrollSheet, "E2", fmt.Sprintf("J%d", totalRow), money); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(payrollSheet, "A1", "M1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(payrollSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("M%d", totalRow), bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(payrollSheet, "A", "M", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
