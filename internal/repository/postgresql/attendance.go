package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.check_in, a.check_out, a.work_hours_in_minutes,
	a.modified_by, a.modified_at, a.is_admin_override, a.version, a.created_at, a.updated_at,
	e.name, e.employee_code`

const attendanceFrom = `attendances a JOIN employees e ON e.id = a.employee_id`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut, &att.WorkHoursInMinutes,
		&att.ModifiedBy, &att.ModifiedAt, &att.IsAdminOverride, &att.Version, &att.CreatedAt, &att.UpdatedAt,
		&att.EmployeeName, &att.EmployeeCode,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, date, check_in, check_out, work_hours_in_minutes,
			modified_by, modified_at, is_admin_override
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.CheckIn,
		newAttendance.CheckOut,
		newAttendance.WorkHoursInMinutes,
		newAttendance.ModifiedBy,
		newAttendance.ModifiedAt,
		newAttendance.IsAdminOverride,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "attendances_employee_date_key") {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a.GetByID(ctx, id)
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id int64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	att, err := scanAttendance(q.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM `+attendanceFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date civil.Date) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM ` + attendanceFrom + `
		WHERE a.employee_id = $1 AND a.date = $2
		FOR UPDATE OF a
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_out = $2, work_hours_in_minutes = $3,
			modified_by = $4, modified_at = $5, is_admin_override = $6,
			version = version + 1, updated_at = NOW()
		WHERE id = $7 AND version = $8
		RETURNING id
	`

	var id int64
	err := q.QueryRow(ctx, query,
		att.CheckIn, att.CheckOut, att.WorkHoursInMinutes,
		att.ModifiedBy, att.ModifiedAt, att.IsAdminOverride,
		att.ID, att.Version,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, missingOrStale(ctx, q, "attendances", att.ID, attendance.ErrAttendanceNotFound)
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance %d: %w", att.ID, err)
	}

	return a.GetByID(ctx, id)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	var c conditions
	if filter.EmployeeID != nil {
		c.add("a.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.From != nil {
		c.add("a.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		c.add("a.date <= $%d", *filter.To)
	}
	if filter.State != nil {
		switch attendance.State(*filter.State) {
		case attendance.StateCheckedIn:
			c.clauses = append(c.clauses, "a.check_in IS NOT NULL AND a.check_out IS NULL")
		case attendance.StateCheckedOut:
			c.clauses = append(c.clauses, "a.check_out IS NOT NULL")
		}
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+attendanceFrom+" WHERE "+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	limitClause, args := c.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY a.date %s, a.id ASC
		%s`, attendanceColumns, attendanceFrom, c.where(), sortDirection(filter.SortOrder), limitClause), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance: %w", err)
	}

	records, err := collectAttendance(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, date civil.Date) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT `+attendanceColumns+` FROM `+attendanceFrom+`
		WHERE a.check_in IS NOT NULL AND a.check_out IS NULL AND a.date < $1
		ORDER BY a.date ASC, a.id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance: %w", err)
	}
	return collectAttendance(rows)
}

func collectAttendance(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}
	return records, nil
}
