package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const overtimeColumns = `
	o.id, o.employee_id, o.date, o.hours, o.rate_multiplier, o.reason, o.status,
	o.approved_by, o.decided_at, o.version, o.created_at, o.updated_at, e.name`

const overtimeFrom = `overtime_records o INNER JOIN employees e ON o.employee_id = e.id`

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

func scanOvertime(row pgx.Row) (overtime.OvertimeRecord, error) {
	var o overtime.OvertimeRecord
	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.Date, &o.Hours, &o.RateMultiplier, &o.Reason, &o.Status,
		&o.ApprovedBy, &o.DecidedAt, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.EmployeeName,
	)
	return o, err
}

// Create implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Create(ctx context.Context, record overtime.OvertimeRecord) (overtime.OvertimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_records (employee_id, date, hours, rate_multiplier, reason, status, approved_by, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query,
		record.EmployeeID, record.Date, record.Hours, record.RateMultiplier, record.Reason, record.Status,
		record.ApprovedBy, record.DecidedAt,
	).Scan(&id)
	if err != nil {
		return overtime.OvertimeRecord{}, fmt.Errorf("failed to create overtime record: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id int64) (overtime.OvertimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	o, err := scanOvertime(q.QueryRow(ctx, `SELECT `+overtimeColumns+` FROM `+overtimeFrom+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRecord{}, overtime.ErrOvertimeRecordNotFound
		}
		return overtime.OvertimeRecord{}, fmt.Errorf("failed to get overtime record %d: %w", id, err)
	}
	return o, nil
}

// Update implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) Update(ctx context.Context, record overtime.OvertimeRecord) (overtime.OvertimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_records
		SET status = $1, approved_by = $2, decided_at = $3, version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query, record.Status, record.ApprovedBy, record.DecidedAt, record.ID, record.Version).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRecord{}, missingOrStale(ctx, q, "overtime_records", record.ID, overtime.ErrOvertimeRecordNotFound)
		}
		return overtime.OvertimeRecord{}, fmt.Errorf("failed to update overtime record %d: %w", record.ID, err)
	}

	return r.GetByID(ctx, id)
}

// List implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.OvertimeRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("o.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Status != nil {
		c.add("o.status = $%d", *filter.Status)
	}
	if filter.From != nil {
		c.add("o.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		c.add("o.date <= $%d", *filter.To)
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM overtime_records o WHERE "+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime records: %w", err)
	}

	limitClause, args := c.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY o.date DESC, o.id DESC
		%s`, overtimeColumns, overtimeFrom, c.where(), limitClause), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list overtime records: %w", err)
	}

	records, err := collectOvertime(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListApprovedInPeriod implements overtime.OvertimeRepository.
func (r *overtimeRepositoryImpl) ListApprovedInPeriod(ctx context.Context, employeeID int64, month, year int) ([]overtime.OvertimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeColumns + ` FROM ` + overtimeFrom + `
		WHERE o.employee_id = $1
		  AND o.status = $2
		  AND EXTRACT(MONTH FROM o.date) = $3
		  AND EXTRACT(YEAR FROM o.date) = $4
		ORDER BY o.date ASC, o.id ASC
	`

	rows, err := q.Query(ctx, query, employeeID, overtime.OvertimeStatusApproved, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved overtime: %w", err)
	}
	return collectOvertime(rows)
}

func collectOvertime(rows pgx.Rows) ([]overtime.OvertimeRecord, error) {
	defer rows.Close()

	records := make([]overtime.OvertimeRecord, 0)
	for rows.Next() {
		o, err := scanOvertime(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime record: %w", err)
		}
		records = append(records, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overtime records: %w", err)
	}
	return records, nil
}
