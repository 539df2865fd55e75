package kv

import (
	"context"
	"sort"

	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type payrollRepositoryImpl struct {
	records   *recordstore.Collection[payrollDoc]
	directory directory
	tx        database.Transactor
}

func NewPayrollRepository(driver recordstore.Driver) payroll.PayrollRepository {
	return &payrollRepositoryImpl{
		records:   recordstore.NewCollection[payrollDoc](driver, kindPayroll),
		directory: newDirectory(driver),
		tx:        NewTransactor(driver),
	}
}

func (r *payrollRepositoryImpl) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	var created payroll.PayrollRecord
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, exists, err := r.records.First(ctx, samePeriod(record.EmployeeID, record.PeriodMonth, record.PeriodYear))
		if err != nil {
			return err
		}
		if exists {
			return payroll.ErrPayrollRecordAlreadyExists
		}

		entry, err := r.records.Append(ctx, newPayrollDoc(record))
		if err != nil {
			return err
		}
		created = entry.Value.toEntity(entry.ID, entry.Version)
		return nil
	})
	return created, err
}

func (r *payrollRepositoryImpl) GetPayrollRecordByID(ctx context.Context, id int64) (payroll.PayrollRecord, error) {
	entry, err := r.records.Get(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, storeErr(err, payroll.ErrPayrollRecordNotFound)
	}
	return r.withEmployee(ctx, entry.Value.toEntity(entry.ID, entry.Version))
}

func (r *payrollRepositoryImpl) GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID int64, month, year int) (payroll.PayrollRecord, error) {
	entry, found, err := r.records.First(ctx, samePeriod(employeeID, month, year))
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if !found {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *payrollRepositoryImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	all, err := r.records.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	employees, err := r.directory.byID(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]payroll.PayrollRecord, 0)
	for _, entry := range all {
		rec := entry.Value.toEntity(entry.ID, entry.Version)
		if !filter.Matches(rec) {
			continue
		}
		if e, ok := employees[rec.EmployeeID]; ok {
			rec.EmployeeName, rec.EmployeeCode, rec.Department = &e.Name, &e.EmployeeCode, &e.Department
		}
		matched = append(matched, rec)
	}

	asc := filter.SortOrder == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		pi := matched[i].PeriodYear*100 + matched[i].PeriodMonth
		pj := matched[j].PeriodYear*100 + matched[j].PeriodMonth
		if pi != pj {
			return (pi < pj) == asc
		}
		return matched[i].ID < matched[j].ID
	})

	start, end := pagination.Window(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *payrollRepositoryImpl) UpdatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	entry, err := r.records.Replace(ctx, record.ID, record.Version, newPayrollDoc(record))
	if err != nil {
		return payroll.PayrollRecord{}, storeErr(err, payroll.ErrPayrollRecordNotFound)
	}
	return r.withEmployee(ctx, entry.Value.toEntity(entry.ID, entry.Version))
}

func (r *payrollRepositoryImpl) withEmployee(ctx context.Context, rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	employees, err := r.directory.byID(ctx)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if e, ok := employees[rec.EmployeeID]; ok {
		rec.EmployeeName, rec.EmployeeCode, rec.Department = &e.Name, &e.EmployeeCode, &e.Department
	}
	return rec, nil
}

func samePeriod(employeeID int64, month, year int) func(payrollDoc) bool {
	return func(d payrollDoc) bool {
		return d.EmployeeID == employeeID && d.PeriodMonth == month && d.PeriodYear == year
	}
}
