package kv

import (
	"context"
	"sort"
	"strings"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type employeeRepositoryImpl struct {
	employees *recordstore.Collection[employeeDoc]
	tx        database.Transactor
}

func NewEmployeeRepository(driver recordstore.Driver) employee.EmployeeRepository {
	return &employeeRepositoryImpl{
		employees: recordstore.NewCollection[employeeDoc](driver, kindEmployees),
		tx:        NewTransactor(driver),
	}
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	var created employee.Employee
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, taken, err := r.employees.First(ctx, func(d employeeDoc) bool {
			return d.Email == newEmployee.Email || d.EmployeeCode == newEmployee.EmployeeCode
		})
		if err != nil {
			return err
		}
		if taken {
			exists, err := r.ExistsByEmail(ctx, newEmployee.Email)
			if err != nil {
				return err
			}
			if exists {
				return employee.ErrEmailAlreadyRegistered
			}
			return employee.ErrEmployeeCodeExists
		}

		entry, err := r.employees.Append(ctx, newEmployeeDoc(newEmployee))
		if err != nil {
			return err
		}
		created = entry.Value.toEntity(entry.ID, entry.Version)
		return nil
	})
	return created, err
}

func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	entry, err := r.employees.Get(ctx, id)
	if err != nil {
		return employee.Employee{}, storeErr(err, employee.ErrEmployeeNotFound)
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *employeeRepositoryImpl) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	entry, found, err := r.employees.First(ctx, func(d employeeDoc) bool { return d.Email == email })
	if err != nil {
		return employee.Employee{}, err
	}
	if !found {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *employeeRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, found, err := r.employees.First(ctx, func(d employeeDoc) bool { return d.Email == email })
	return found, err
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	all, err := r.employees.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]employee.Employee, 0, len(all))
	for _, entry := range all {
		e := entry.Value.toEntity(entry.ID, entry.Version)
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})

	start, end := pagination.Window(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	entry, err := r.employees.Replace(ctx, e.ID, e.Version, newEmployeeDoc(e))
	if err != nil {
		return employee.Employee{}, storeErr(err, employee.ErrEmployeeNotFound)
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *employeeRepositoryImpl) Count(ctx context.Context) (int64, error) {
	all, err := r.employees.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}
