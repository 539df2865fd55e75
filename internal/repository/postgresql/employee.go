package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	id, employee_code, name, email, password_hash, department, designation, role, status,
	avatar_url, organization_logo_url, base_salary, version, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.EmployeeCode, &e.Name, &e.Email, &e.PasswordHash, &e.Department, &e.Designation, &e.Role, &e.Status,
		&e.AvatarURL, &e.OrganizationLogoURL, &e.BaseSalary, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (
			employee_code, name, email, password_hash, department, designation, role, status,
			avatar_url, organization_logo_url, base_salary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.EmployeeCode,
		newEmployee.Name,
		newEmployee.Email,
		newEmployee.PasswordHash,
		newEmployee.Department,
		newEmployee.Designation,
		newEmployee.Role,
		newEmployee.Status,
		newEmployee.AvatarURL,
		newEmployee.OrganizationLogoURL,
		newEmployee.BaseSalary,
	))
	if err != nil {
		switch {
		case isUniqueViolation(err, "employees_email_key"):
			return employee.Employee{}, employee.ErrEmailAlreadyRegistered
		case isUniqueViolation(err, "employees_employee_code_key"):
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id %d: %w", id, err)
	}
	return e, nil
}

// GetByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}
	return e, nil
}

// ExistsByEmail implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee email: %w", err)
	}
	return exists, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	var c conditions
	if filter.Search != nil && *filter.Search != "" {
		c.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR employee_code ILIKE $%[1]d)", "%"+*filter.Search+"%")
	}
	if filter.Department != nil {
		c.add("LOWER(department) = LOWER($%d)", *filter.Department)
	}
	if filter.Role != nil {
		c.add("role = $%d", *filter.Role)
	}
	if filter.Status != nil {
		c.add("status = $%d", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees WHERE "+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	limitClause, args := c.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM employees
		WHERE %s
		ORDER BY LOWER(name) ASC, id ASC
		%s`, employeeColumns, c.where(), limitClause), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]employee.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating employees: %w", err)
	}

	return employees, total, nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET name = $1, department = $2, designation = $3, role = $4, status = $5,
			avatar_url = $6, organization_logo_url = $7, base_salary = $8, password_hash = $9,
			version = version + 1, updated_at = NOW()
		WHERE id = $10 AND version = $11
		RETURNING ` + employeeColumns

	updated, err := scanEmployee(q.QueryRow(ctx, query,
		e.Name, e.Department, e.Designation, e.Role, e.Status,
		e.AvatarURL, e.OrganizationLogoURL, e.BaseSalary, e.PasswordHash,
		e.ID, e.Version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, missingOrStale(ctx, q, "employees", e.ID, employee.ErrEmployeeNotFound)
		}
		return employee.Employee{}, fmt.Errorf("failed to update employee %d: %w", e.ID, err)
	}
	return updated, nil
}

// Count implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}
