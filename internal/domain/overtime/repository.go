package overtime

import "context"

type OvertimeRepository interface {
	Create(ctx context.Context, record OvertimeRecord) (OvertimeRecord, error)
	GetByID(ctx context.Context, id int64) (OvertimeRecord, error)
	// Update writes the record if its Version is still current.
	Update(ctx context.Context, record OvertimeRecord) (OvertimeRecord, error)
	List(ctx context.Context, filter OvertimeFilter) ([]OvertimeRecord, int64, error)
	// ListApprovedInPeriod returns approved records of employeeID dated in month/year.
	ListApprovedInPeriod(ctx context.Context, employeeID int64, month, year int) ([]OvertimeRecord, error)
}
