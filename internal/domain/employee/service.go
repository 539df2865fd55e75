package employee

import "context"

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// GetMe returns the authenticated employee's profile
	GetMe(ctx context.Context) (EmployeeResponse, error)

	// GetEmployee returns one employee (self, or employee.view_all)
	GetEmployee(ctx context.Context, id int64) (EmployeeResponse, error)

	// ListEmployees lists employees with filters (employee.view_all)
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// UpdateProfile edits the authenticated employee's own profile
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (EmployeeResponse, error)

	// UpdateStatus toggles the authenticated employee's presence status
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (EmployeeResponse, error)

	// UpdateRole changes another employee's role (employee.manage)
	UpdateRole(ctx context.Context, req UpdateRoleRequest) (EmployeeResponse, error)

	// SetBaseSalary sets the monthly base salary used by payroll (employee.manage)
	SetBaseSalary(ctx context.Context, req SetBaseSalaryRequest) (EmployeeResponse, error)
}
