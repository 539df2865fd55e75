package user

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access
	RoleHR       Role = "hr"       // People operations and payroll
	RoleManager  Role = "manager"  // Can approve leave/overtime
	RoleEmployee Role = "employee" // Regular employee
)

// Roles lists every assignable role.
var Roles = []Role{RoleAdmin, RoleHR, RoleManager, RoleEmployee}

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller of a service method.
type Principal struct {
	EmployeeID int64
	Email      string
	Role       Role
}

// Can reports whether the principal's role grants permission.
func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

// Require returns ErrInsufficientPermissions unless the principal holds permission.
func (p Principal) Require(permission Permission) error {
	if !p.Can(permission) {
		return &PermissionError{Role: p.Role, Permission: permission}
	}
	return nil
}

// IsSelfOr allows access to the principal's own records, or to anyone's
// records when the principal holds permission.
func (p Principal) IsSelfOr(employeeID int64, permission Permission) error {
	if p.EmployeeID == employeeID {
		return nil
	}
	return p.Require(permission)
}
