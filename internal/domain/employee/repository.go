package employee

import "context"

type EmployeeRepository interface {
	// Create returns ErrEmailAlreadyRegistered or ErrEmployeeCodeExists on a uniqueness clash.
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	// Update writes e if its Version is still current and returns it with the next Version.
	Update(ctx context.Context, e Employee) (Employee, error)
	Count(ctx context.Context) (int64, error)
}
