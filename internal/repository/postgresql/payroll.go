package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const payrollColumns = `
	p.id, p.employee_id, p.period_month, p.period_year,
	p.base_salary, p.overtime_hours, p.overtime_pay, p.bonus, p.deductions, p.net_salary,
	p.status, p.processed_at, p.paid_at, p.paid_by, p.version, p.created_at, p.updated_at,
	e.name, e.employee_code, e.department`

const payrollFrom = `payroll_records p INNER JOIN employees e ON p.employee_id = e.id`

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var p payroll.PayrollRecord
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.PeriodMonth, &p.PeriodYear,
		&p.BaseSalary, &p.OvertimeHours, &p.OvertimePay, &p.Bonus, &p.Deductions, &p.NetSalary,
		&p.Status, &p.ProcessedAt, &p.PaidAt, &p.PaidBy, &p.Version, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeCode, &p.Department,
	)
	return p, err
}

// ========== RECORDS ==========

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_records (
			employee_id, period_month, period_year,
			base_salary, overtime_hours, overtime_pay, bonus, deductions, net_salary,
			status, processed_at, paid_at, paid_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.PeriodMonth, record.PeriodYear,
		record.BaseSalary, record.OvertimeHours, record.OvertimePay, record.Bonus, record.Deductions, record.NetSalary,
		record.Status, record.ProcessedAt, record.PaidAt, record.PaidBy,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "payroll_records_employee_period_key") {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return r.GetPayrollRecordByID(ctx, id)
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id int64) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanPayrollRecord(q.QueryRow(ctx, `SELECT `+payrollColumns+` FROM `+payrollFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record %d: %w", id, err)
	}
	return p, nil
}

func (r *payrollRepository) GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID int64, month, year int) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollColumns + ` FROM ` + payrollFrom + `
		WHERE p.employee_id = $1 AND p.period_month = $2 AND p.period_year = $3
		FOR UPDATE OF p
	`

	p, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record by period: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("p.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.PeriodMonth != nil {
		c.add("p.period_month = $%d", *filter.PeriodMonth)
	}
	if filter.PeriodYear != nil {
		c.add("p.period_year = $%d", *filter.PeriodYear)
	}
	if filter.Status != nil {
		c.add("p.status = $%d", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM payroll_records p WHERE "+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	dir := sortDirection(filter.SortOrder)
	limitClause, args := c.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY p.period_year %s, p.period_month %s, p.id ASC
		%s`, payrollColumns, payrollFrom, c.where(), dir, dir, limitClause), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := make([]payroll.PayrollRecord, 0)
	for rows.Next() {
		p, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payroll records: %w", err)
	}

	return records, total, nil
}

func (r *payrollRepository) UpdatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET base_salary = $1, overtime_hours = $2, overtime_pay = $3, bonus = $4, deductions = $5, net_salary = $6,
			status = $7, processed_at = $8, paid_at = $9, paid_by = $10,
			version = version + 1, updated_at = NOW()
		WHERE id = $11 AND version = $12
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query,
		record.BaseSalary, record.OvertimeHours, record.OvertimePay, record.Bonus, record.Deductions, record.NetSalary,
		record.Status, record.ProcessedAt, record.PaidAt, record.PaidBy,
		record.ID, record.Version,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, missingOrStale(ctx, q, "payroll_records", record.ID, payroll.ErrPayrollRecordNotFound)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll record %d: %w", record.ID, err)
	}

	return r.GetPayrollRecordByID(ctx, id)
}
