package overtime

import "context"

type OvertimeService interface {
	// SubmitOvertime files pending overtime for the authenticated employee
	SubmitOvertime(ctx context.Context, req SubmitOvertimeRequest) (OvertimeResponse, error)

	// DecideOvertime approves or rejects pending overtime (overtime.approve)
	DecideOvertime(ctx context.Context, req DecideOvertimeRequest) (OvertimeResponse, error)

	GetOvertime(ctx context.Context, id int64) (OvertimeResponse, error)
	GetMyOvertime(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
	ListOvertime(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
}
