package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	clock        clock.Clock
}

func NewEmployeeService(tx database.Transactor, employeeRepo employee.EmployeeRepository, clk clock.Clock) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		clock:        clk,
	}
}

func (s *EmployeeServiceImpl) GetMe(ctx context.Context) (employee.EmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	me, err := s.employeeRepo.GetByID(ctx, principal.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(me), nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id int64) (employee.EmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := principal.IsSelfOr(id, user.PermissionEmployeeViewAll); err != nil {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	found, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(found), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := principal.Require(user.PermissionEmployeeViewAll); err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	employees, total, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}

	totalPages, showing := pagination.Summary(filter.Page, filter.Limit, total)
	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

func (s *EmployeeServiceImpl) UpdateProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := principal.Require(user.PermissionEditOwnProfile); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	return s.modify(ctx, principal.EmployeeID, func(e *employee.Employee) error {
		if req.Name != nil {
			e.Name = strings.TrimSpace(*req.Name)
		}
		if req.Department != nil {
			e.Department = strings.TrimSpace(*req.Department)
		}
		if req.Designation != nil {
			e.Designation = strings.TrimSpace(*req.Designation)
		}
		if req.AvatarURL != nil {
			e.AvatarURL = emptyToNil(*req.AvatarURL)
		}
		if req.OrganizationLogoURL != nil {
			e.OrganizationLogoURL = emptyToNil(*req.OrganizationLogoURL)
		}
		return nil
	})
}

func (s *EmployeeServiceImpl) UpdateStatus(ctx context.Context, req employee.UpdateStatusRequest) (employee.EmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	return s.modify(ctx, principal.EmployeeID, func(e *employee.Employee) error {
		e.Status = employee.Status(req.Status)
		return nil
	})
}

func (s *EmployeeServiceImpl) UpdateRole(ctx context.Context, req employee.UpdateRoleRequest) (employee.EmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := principal.Require(user.PermissionEmployeeManage); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if req.ID == principal.EmployeeID {
		return employee.EmployeeResponse{}, employee.ErrCannotChangeOwnRole
	}

	resp, err := s.modify(ctx, req.ID, func(e *employee.Employee) error {
		e.Role = user.Role(req.Role)
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee role changed", "employee_id", req.ID, "role", req.Role, "changed_by", principal.EmployeeID)
	return resp, nil
}

func (s *EmployeeServiceImpl) SetBaseSalary(ctx context.Context, req employee.SetBaseSalaryRequest) (employee.EmployeeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := principal.Require(user.PermissionEmployeeManage); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	salary := req.BaseSalary.Round(2)
	return s.modify(ctx, req.ID, func(e *employee.Employee) error {
		e.BaseSalary = &salary
		return nil
	})
}

// modify reads, patches and writes one employee in a transaction.
func (s *EmployeeServiceImpl) modify(ctx context.Context, id int64, patch func(e *employee.Employee) error) (employee.EmployeeResponse, error) {
	var saved employee.Employee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.employeeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := patch(&current); err != nil {
			return err
		}
		current.UpdatedAt = s.clock.Now()

		saved, err = s.employeeRepo.Update(ctx, current)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(saved), nil
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
