package kv

import (
	"context"
	"sort"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type attendanceRepositoryImpl struct {
	records   *recordstore.Collection[attendanceDoc]
	directory directory
	tx        database.Transactor
}

func NewAttendanceRepository(driver recordstore.Driver) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{
		records:   recordstore.NewCollection[attendanceDoc](driver, kindAttendance),
		directory: newDirectory(driver),
		tx:        NewTransactor(driver),
	}
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	var created attendance.Attendance
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := r.GetByEmployeeAndDate(ctx, a.EmployeeID, a.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return attendance.ErrAttendanceExists
		}

		entry, err := r.records.Append(ctx, newAttendanceDoc(a))
		if err != nil {
			return err
		}
		created = entry.Value.toEntity(entry.ID, entry.Version)
		return nil
	})
	return created, err
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id int64) (attendance.Attendance, error) {
	entry, err := r.records.Get(ctx, id)
	if err != nil {
		return attendance.Attendance{}, storeErr(err, attendance.ErrAttendanceNotFound)
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date civil.Date) (*attendance.Attendance, error) {
	entry, found, err := r.records.First(ctx, func(d attendanceDoc) bool {
		return d.EmployeeID == employeeID && d.Date == date
	})
	if err != nil || !found {
		return nil, err
	}
	a := entry.Value.toEntity(entry.ID, entry.Version)
	return &a, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	entry, err := r.records.Replace(ctx, a.ID, a.Version, newAttendanceDoc(a))
	if err != nil {
		return attendance.Attendance{}, storeErr(err, attendance.ErrAttendanceNotFound)
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	all, err := r.records.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	employees, err := r.directory.byID(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]attendance.Attendance, 0)
	for _, entry := range all {
		a := entry.Value.toEntity(entry.ID, entry.Version)
		if !filter.Matches(a) {
			continue
		}
		if e, ok := employees[a.EmployeeID]; ok {
			a.EmployeeName, a.EmployeeCode = &e.Name, &e.EmployeeCode
		}
		matched = append(matched, a)
	}

	asc := filter.SortOrder == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date.Before(matched[j].Date) == asc
		}
		return (matched[i].ID < matched[j].ID) == asc
	})

	start, end := pagination.Window(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *attendanceRepositoryImpl) ListOpenBefore(ctx context.Context, date civil.Date) ([]attendance.Attendance, error) {
	open, err := r.records.Filter(ctx, func(d attendanceDoc) bool {
		return d.CheckIn != nil && d.CheckOut == nil && d.Date.Before(date)
	})
	if err != nil {
		return nil, err
	}

	out := make([]attendance.Attendance, 0, len(open))
	for _, entry := range open {
		out = append(out, entry.Value.toEntity(entry.ID, entry.Version))
	}
	return out, nil
}
