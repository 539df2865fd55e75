package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/repository/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wib is UTC+7, the zone the tests run the organisation in.
var wib = time.FixedZone("WIB", 7*60*60)

type testEnv struct {
	svc        *AttendanceServiceImpl
	clock      *clock.Fake
	jwt        jwt.Service
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	driver := recordstore.NewMemory()
	jwtService, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	require.NoError(t, err)

	env := &testEnv{
		clock:      clock.NewFake(now),
		jwt:        jwtService,
		employees:  kv.NewEmployeeRepository(driver),
		attendance: kv.NewAttendanceRepository(driver),
	}
	env.svc = NewAttendanceService(kv.NewTransactor(driver), env.attendance, env.employees, env.clock, wib).(*AttendanceServiceImpl)
	return env
}

func (e *testEnv) createEmployee(t *testing.T, email string, role user.Role) employee.Employee {
	t.Helper()
	created, err := e.employees.Create(context.Background(), employee.Employee{
		EmployeeCode: "EMP-" + email[:4],
		Name:         email,
		Email:        email,
		Role:         role,
		Status:       employee.StatusOffline,
	})
	require.NoError(t, err)
	return created
}

func (e *testEnv) as(t *testing.T, emp employee.Employee) context.Context {
	t.Helper()
	ctx, err := jwt.NewContext(context.Background(), e.jwt, user.Principal{
		EmployeeID: emp.ID,
		Email:      emp.Email,
		Role:       emp.Role,
	})
	require.NoError(t, err)
	return ctx
}

// at returns the instant of hh:mm on 2025-03-10 in WIB.
func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, wib)
}

func TestCheckIn_CreatesOpenRecord(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	emp := env.createEmployee(t, "ana1@attendly.io", user.RoleEmployee)
	ctx := env.as(t, emp)

	resp, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)

	assert.Equal(t, emp.ID, resp.EmployeeID)
	assert.Equal(t, "2025-03-10", resp.Date)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, "2025-03-10T09:00:00+07:00", *resp.CheckIn)
	assert.Nil(t, resp.CheckOut)
	assert.Equal(t, string(attendance.StateCheckedIn), resp.State)
}

func TestCheckIn_TwiceReturnsAlreadyCheckedIn(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	ctx := env.as(t, env.createEmployee(t, "ana2@attendly.io", user.RoleEmployee))

	_, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.svc.CheckIn(ctx)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	ctx := env.as(t, env.createEmployee(t, "ana3@attendly.io", user.RoleEmployee))

	_, err := env.svc.CheckOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)
}

func TestFullCycle_ThenCycleComplete(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	ctx := env.as(t, env.createEmployee(t, "ana4@attendly.io", user.RoleEmployee))

	_, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)

	env.clock.Set(at(17, 30))
	resp, err := env.svc.CheckOut(ctx)
	require.NoError(t, err)

	require.NotNil(t, resp.CheckIn)
	require.NotNil(t, resp.CheckOut)
	assert.Equal(t, "2025-03-10T09:00:00+07:00", *resp.CheckIn)
	assert.Equal(t, "2025-03-10T17:30:00+07:00", *resp.CheckOut)
	require.NotNil(t, resp.WorkHoursInMinutes)
	assert.Equal(t, 510, *resp.WorkHoursInMinutes)
	assert.Equal(t, string(attendance.StateCheckedOut), resp.State)

	_, err = env.svc.CheckIn(ctx)
	assert.ErrorIs(t, err, attendance.ErrCycleComplete)

	_, err = env.svc.CheckOut(ctx)
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)
}

func TestCheckIn_NextDayStartsNewCycle(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	ctx := env.as(t, env.createEmployee(t, "ana5@attendly.io", user.RoleEmployee))

	_, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)
	env.clock.Set(at(17, 0))
	_, err = env.svc.CheckOut(ctx)
	require.NoError(t, err)

	env.clock.Set(at(9, 0).AddDate(0, 0, 1))
	resp, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", resp.Date)
}

func TestCheckIn_UsesOrganisationCalendarDay(t *testing.T) {
	// 23:30 UTC on the 9th is already 06:30 on the 10th in WIB.
	env := newTestEnv(t, time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC))
	ctx := env.as(t, env.createEmployee(t, "ana6@attendly.io", user.RoleEmployee))

	resp, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
}

func TestGetStatus(t *testing.T) {
	env := newTestEnv(t, at(8, 0))
	ctx := env.as(t, env.createEmployee(t, "ana7@attendly.io", user.RoleEmployee))

	status, err := env.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateNoRecord), status.State)
	assert.True(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)
	assert.Nil(t, status.Record)

	_, err = env.svc.CheckIn(ctx)
	require.NoError(t, err)

	status, err = env.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StateCheckedIn), status.State)
	assert.False(t, status.CanCheckIn)
	assert.True(t, status.CanCheckOut)
	assert.NotNil(t, status.Record)
}

func TestCheckIn_ConcurrentRequestsCreateOneRecord(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	ctx := env.as(t, env.createEmployee(t, "ana8@attendly.io", user.RoleEmployee))

	const requests = 8
	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.CheckIn(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, succeeded)
}

func TestAdminOverride_CreatesRecordWithAudit(t *testing.T) {
	env := newTestEnv(t, at(12, 0))
	admin := env.createEmployee(t, "boss@attendly.io", user.RoleAdmin)
	emp := env.createEmployee(t, "ana9@attendly.io", user.RoleEmployee)

	resp, err := env.svc.AdminOverride(env.as(t, admin), attendance.AdminOverrideRequest{
		EmployeeID: emp.ID,
		Field:      string(attendance.FieldCheckIn),
		Timestamp:  "2025-03-10T08:45:00+07:00",
	})
	require.NoError(t, err)

	assert.Equal(t, emp.ID, resp.EmployeeID)
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.True(t, resp.IsAdminOverride)
	require.NotNil(t, resp.ModifiedBy)
	assert.Equal(t, admin.ID, *resp.ModifiedBy)
	assert.NotNil(t, resp.ModifiedAt)

	// The overridden check-in counts as today's open cycle.
	_, err = env.svc.CheckIn(env.as(t, emp))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	closed, err := env.svc.CheckOut(env.as(t, emp))
	require.NoError(t, err)
	require.NotNil(t, closed.WorkHoursInMinutes)
	assert.Equal(t, 195, *closed.WorkHoursInMinutes)
}

func TestAdminOverride_UpdatesExistingRecordOnGivenDate(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	admin := env.createEmployee(t, "boss@attendly.io", user.RoleHR)
	emp := env.createEmployee(t, "ana10@attendly.io", user.RoleEmployee)

	_, err := env.svc.CheckIn(env.as(t, emp))
	require.NoError(t, err)

	env.clock.Set(at(9, 0).AddDate(0, 0, 1))
	resp, err := env.svc.AdminOverride(env.as(t, admin), attendance.AdminOverrideRequest{
		EmployeeID: emp.ID,
		Field:      string(attendance.FieldCheckOut),
		Timestamp:  "2025-03-10T18:00:00+07:00",
		Date:       "2025-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
	assert.Equal(t, string(attendance.StateCheckedOut), resp.State)
	require.NotNil(t, resp.WorkHoursInMinutes)
	assert.Equal(t, 540, *resp.WorkHoursInMinutes)

	list, err := env.svc.ListAttendance(env.as(t, admin), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
}

func TestAdminOverride_Errors(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	admin := env.createEmployee(t, "boss@attendly.io", user.RoleAdmin)
	emp := env.createEmployee(t, "ana11@attendly.io", user.RoleEmployee)

	req := attendance.AdminOverrideRequest{
		EmployeeID: 999,
		Field:      string(attendance.FieldCheckIn),
		Timestamp:  "2025-03-10T08:00:00+07:00",
	}
	_, err := env.svc.AdminOverride(env.as(t, admin), req)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	req.EmployeeID = emp.ID
	_, err = env.svc.AdminOverride(env.as(t, emp), req)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	req.Field = "lunch"
	_, err = env.svc.AdminOverride(env.as(t, admin), req)
	assert.Error(t, err)
}

func TestGetMyAttendance_OnlyOwnRecords(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	ana := env.createEmployee(t, "ana12@attendly.io", user.RoleEmployee)
	budi := env.createEmployee(t, "budi@attendly.io", user.RoleEmployee)

	_, err := env.svc.CheckIn(env.as(t, ana))
	require.NoError(t, err)
	_, err = env.svc.CheckIn(env.as(t, budi))
	require.NoError(t, err)

	other := budi.ID
	mine, err := env.svc.GetMyAttendance(env.as(t, ana), attendance.AttendanceFilter{EmployeeID: &other})
	require.NoError(t, err)
	require.Len(t, mine.Attendances, 1)
	assert.Equal(t, ana.ID, mine.Attendances[0].EmployeeID)

	_, err = env.svc.ListAttendance(env.as(t, ana), attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestCheckIn_Unauthenticated(t *testing.T) {
	env := newTestEnv(t, at(9, 0))

	_, err := env.svc.CheckIn(context.Background())
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestCloseStaleSessions(t *testing.T) {
	env := newTestEnv(t, at(9, 0))
	emp := env.createEmployee(t, "ana13@attendly.io", user.RoleEmployee)
	ctx := env.as(t, emp)

	_, err := env.svc.CheckIn(ctx)
	require.NoError(t, err)

	// Same day: nothing is stale yet.
	closed, err := env.svc.CloseStaleSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	env.clock.Set(at(1, 0).AddDate(0, 0, 1))
	closed, err = env.svc.CloseStaleSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	record, err := env.attendance.GetByEmployeeAndDate(context.Background(), emp.ID, civil.Date{Year: 2025, Month: time.March, Day: 10})
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.CheckOut)
	assert.True(t, record.CheckOut.Equal(time.Date(2025, 3, 10, 23, 59, 59, 0, wib)))
	assert.True(t, record.IsAdminOverride)
	assert.Nil(t, record.ModifiedBy)

	// The new day is untouched and open for check-in.
	_, err = env.svc.CheckIn(ctx)
	assert.NoError(t, err)
}
