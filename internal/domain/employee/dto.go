package employee

import (
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type EmployeeResponse struct {
	ID                  int64            `json:"id"`
	EmployeeCode        string           `json:"employee_code"`
	Name                string           `json:"name"`
	Email               string           `json:"email"`
	Department          string           `json:"department"`
	Designation         string           `json:"designation"`
	Role                string           `json:"role"`
	Status              string           `json:"status"`
	AvatarURL           *string          `json:"avatar_url,omitempty"`
	OrganizationLogoURL *string          `json:"organization_logo_url,omitempty"`
	BaseSalary          *decimal.Decimal `json:"base_salary,omitempty"`
	CreatedAt           string           `json:"created_at"`
	UpdatedAt           string           `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:                  e.ID,
		EmployeeCode:        e.EmployeeCode,
		Name:                e.Name,
		Email:               e.Email,
		Department:          e.Department,
		Designation:         e.Designation,
		Role:                string(e.Role),
		Status:              string(e.Status),
		AvatarURL:           e.AvatarURL,
		OrganizationLogoURL: e.OrganizationLogoURL,
		BaseSalary:          e.BaseSalary,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           e.UpdatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

type EmployeeFilter struct {
	Search     *string `json:"search,omitempty"` // name, email or employee code
	Department *string `json:"department,omitempty"`
	Role       *string `json:"role,omitempty"`
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	validator.ValidatePagination(&f.Page, &f.Limit, &errs)

	if f.Role != nil && !user.Role(*f.Role).IsValid() {
		errs.Add("role", "role must be one of: admin, hr, manager, employee")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, Statuses) {
		errs.Add("status", ErrInvalidStatus.Error())
	}

	return errs.Err()
}

// Matches applies the non-paging parts of the filter to one employee.
func (f EmployeeFilter) Matches(e Employee) bool {
	if f.Search != nil && *f.Search != "" {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(e.Email, q) &&
			!strings.Contains(strings.ToLower(e.EmployeeCode), q) {
			return false
		}
	}
	if f.Department != nil && !strings.EqualFold(e.Department, *f.Department) {
		return false
	}
	if f.Role != nil && string(e.Role) != *f.Role {
		return false
	}
	if f.Status != nil && string(e.Status) != *f.Status {
		return false
	}
	return true
}

type UpdateProfileRequest struct {
	Name                *string `json:"name,omitempty"`
	Department          *string `json:"department,omitempty"`
	Designation         *string `json:"designation,omitempty"`
	AvatarURL           *string `json:"avatar_url,omitempty"`
	OrganizationLogoURL *string `json:"organization_logo_url,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name must not be empty")
		} else if len(*r.Name) > 255 {
			errs.Add("name", "name must not exceed 255 characters")
		}
	}
	if r.Department != nil && len(*r.Department) > 100 {
		errs.Add("department", "department must not exceed 100 characters")
	}
	if r.Designation != nil && len(*r.Designation) > 100 {
		errs.Add("designation", "designation must not exceed 100 characters")
	}
	if r.AvatarURL != nil && len(*r.AvatarURL) > 2048 {
		errs.Add("avatar_url", "avatar_url must not exceed 2048 characters")
	}
	if r.OrganizationLogoURL != nil && len(*r.OrganizationLogoURL) > 2048 {
		errs.Add("organization_logo_url", "organization_logo_url must not exceed 2048 characters")
	}

	return errs.Err()
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if !validator.IsInSlice(r.Status, Statuses) {
		errs.Add("status", ErrInvalidStatus.Error())
	}

	return errs.Err()
}

type UpdateRoleRequest struct {
	ID   int64  `json:"-"`
	Role string `json:"role"`
}

func (r *UpdateRoleRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	if !user.Role(r.Role).IsValid() {
		errs.Add("role", "role must be one of: admin, hr, manager, employee")
	}

	return errs.Err()
}

type SetBaseSalaryRequest struct {
	ID         int64           `json:"-"`
	BaseSalary decimal.Decimal `json:"base_salary"`
}

func (r *SetBaseSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	if !r.BaseSalary.IsPositive() {
		errs.Add("base_salary", "base_salary must be greater than 0")
	}

	return errs.Err()
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
