package leave

import "context"

type LeaveService interface {
	// SubmitLeave files a pending request for the authenticated employee
	SubmitLeave(ctx context.Context, req SubmitLeaveRequest) (LeaveRequestResponse, error)

	// DecideLeave approves or rejects a pending request (leave.approve)
	DecideLeave(ctx context.Context, req DecideLeaveRequest) (LeaveRequestResponse, error)

	GetLeaveRequest(ctx context.Context, id int64) (LeaveRequestResponse, error)
	GetMyLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
}
