package kv

import (
	"context"
	"sort"

	"github.com/attendly/attendly-backend-go/internal/domain/overtime"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type overtimeRepositoryImpl struct {
	records   *recordstore.Collection[overtimeDoc]
	directory directory
}

func NewOvertimeRepository(driver recordstore.Driver) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{
		records:   recordstore.NewCollection[overtimeDoc](driver, kindOvertime),
		directory: newDirectory(driver),
	}
}

func (r *overtimeRepositoryImpl) Create(ctx context.Context, record overtime.OvertimeRecord) (overtime.OvertimeRecord, error) {
	entry, err := r.records.Append(ctx, newOvertimeDoc(record))
	if err != nil {
		return overtime.OvertimeRecord{}, err
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *overtimeRepositoryImpl) GetByID(ctx context.Context, id int64) (overtime.OvertimeRecord, error) {
	entry, err := r.records.Get(ctx, id)
	if err != nil {
		return overtime.OvertimeRecord{}, storeErr(err, overtime.ErrOvertimeRecordNotFound)
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *overtimeRepositoryImpl) Update(ctx context.Context, record overtime.OvertimeRecord) (overtime.OvertimeRecord, error) {
	entry, err := r.records.Replace(ctx, record.ID, record.Version, newOvertimeDoc(record))
	if err != nil {
		return overtime.OvertimeRecord{}, storeErr(err, overtime.ErrOvertimeRecordNotFound)
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *overtimeRepositoryImpl) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.OvertimeRecord, int64, error) {
	all, err := r.records.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	employees, err := r.directory.byID(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]overtime.OvertimeRecord, 0)
	for _, entry := range all {
		rec := entry.Value.toEntity(entry.ID, entry.Version)
		if !filter.Matches(rec) {
			continue
		}
		if e, ok := employees[rec.EmployeeID]; ok {
			rec.EmployeeName = &e.Name
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})

	start, end := pagination.Window(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *overtimeRepositoryImpl) ListApprovedInPeriod(ctx context.Context, employeeID int64, month, year int) ([]overtime.OvertimeRecord, error) {
	approved, err := r.records.Filter(ctx, func(d overtimeDoc) bool {
		return d.EmployeeID == employeeID &&
			d.Status == string(overtime.OvertimeStatusApproved) &&
			d.Date.InMonth(month, year)
	})
	if err != nil {
		return nil, err
	}

	out := make([]overtime.OvertimeRecord, 0, len(approved))
	for _, entry := range approved {
		out = append(out, entry.Value.toEntity(entry.ID, entry.Version))
	}
	return out, nil
}
