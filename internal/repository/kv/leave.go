package kv

import (
	"context"
	"sort"

	"github.com/attendly/attendly-backend-go/internal/domain/leave"
	"github.com/attendly/attendly-backend-go/internal/pkg/pagination"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type leaveRequestRepositoryImpl struct {
	requests  *recordstore.Collection[leaveRequestDoc]
	directory directory
}

func NewLeaveRequestRepository(driver recordstore.Driver) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{
		requests:  recordstore.NewCollection[leaveRequestDoc](driver, kindLeaveRequests),
		directory: newDirectory(driver),
	}
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	entry, err := r.requests.Append(ctx, newLeaveRequestDoc(request))
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	return entry.Value.toEntity(entry.ID, entry.Version), nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	entry, err := r.requests.Get(ctx, id)
	if err != nil {
		return leave.LeaveRequest{}, storeErr(err, leave.ErrLeaveRequestNotFound)
	}
	req := entry.Value.toEntity(entry.ID, entry.Version)

	employees, err := r.directory.byID(ctx)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if e, ok := employees[req.EmployeeID]; ok {
		req.EmployeeName = &e.Name
	}
	return req, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	entry, err := r.requests.Replace(ctx, request.ID, request.Version, newLeaveRequestDoc(request))
	if err != nil {
		return leave.LeaveRequest{}, storeErr(err, leave.ErrLeaveRequestNotFound)
	}
	updated := entry.Value.toEntity(entry.ID, entry.Version)
	updated.EmployeeName = request.EmployeeName
	return updated, nil
}

// List returns the newest requests first.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	all, err := r.requests.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	employees, err := r.directory.byID(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]leave.LeaveRequest, 0)
	for _, entry := range all {
		req := entry.Value.toEntity(entry.ID, entry.Version)
		if !filter.Matches(req) {
			continue
		}
		if e, ok := employees[req.EmployeeID]; ok {
			req.EmployeeName = &e.Name
		}
		matched = append(matched, req)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	start, end := pagination.Window(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}
