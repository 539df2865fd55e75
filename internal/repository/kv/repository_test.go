package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/payroll"
	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/civil"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestEmployeeRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(recordstore.NewMemory())

	_, err := repo.Create(ctx, employee.Employee{EmployeeCode: "EMP-1", Email: "a@attendly.io", Role: user.RoleEmployee})
	require.NoError(t, err)

	_, err = repo.Create(ctx, employee.Employee{EmployeeCode: "EMP-2", Email: "a@attendly.io", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, employee.ErrEmailAlreadyRegistered)

	_, err = repo.Create(ctx, employee.Employee{EmployeeCode: "EMP-1", Email: "b@attendly.io", Role: user.RoleEmployee})
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)
}

func TestEmployeeRepository_StaleUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(recordstore.NewMemory())

	created, err := repo.Create(ctx, employee.Employee{EmployeeCode: "EMP-1", Email: "a@attendly.io", Role: user.RoleEmployee})
	require.NoError(t, err)

	first := created
	first.Name = "First"
	_, err = repo.Update(ctx, first)
	require.NoError(t, err)

	second := created
	second.Name = "Second"
	_, err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, database.ErrConcurrentUpdate)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
}

func TestAttendanceRepository_OnePerDayUnderContention(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(recordstore.NewMemory())
	day := civil.Date{Year: 2025, Month: time.March, Day: 10}

	const writers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, attendance.Attendance{EmployeeID: 7, Date: day, CheckIn: &now})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, attendance.ErrAttendanceExists):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, conflicts)

	open, err := repo.ListOpenBefore(ctx, day.AddDays(1))
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestPayrollRepository_OnePerPeriod(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository(recordstore.NewMemory())
	record := payroll.PayrollRecord{
		EmployeeID:  3,
		PeriodMonth: 3,
		PeriodYear:  2025,
		BaseSalary:  decimal.NewFromInt(5000),
		Status:      payroll.PayrollStatusDraft,
	}

	_, err := repo.CreatePayrollRecord(ctx, record)
	require.NoError(t, err)

	_, err = repo.CreatePayrollRecord(ctx, record)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyExists)

	record.PeriodMonth = 4
	_, err = repo.CreatePayrollRecord(ctx, record)
	assert.NoError(t, err)
}

func TestRegistrationCodeRepository_ClaimOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistrationCodeRepository(recordstore.NewMemory())

	_, err := repo.Create(ctx, registration.RegistrationCode{
		Code:      "ABC123",
		ExpiresAt: now.Add(24 * time.Hour),
		Role:      user.RoleEmployee,
		CreatedAt: now,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, registration.RegistrationCode{Code: "ABC123", ExpiresAt: now})
	assert.ErrorIs(t, err, registration.ErrCodeExists)

	employeeID := int64(11)
	claimed, err := repo.Claim(ctx, "ABC123", &employeeID, now)
	require.NoError(t, err)
	assert.True(t, claimed.Used)
	assert.Equal(t, &employeeID, claimed.UsedBy)

	_, err = repo.Claim(ctx, "ABC123", &employeeID, now)
	assert.ErrorIs(t, err, registration.ErrInvalidOrExpiredCode)

	again, err := repo.MarkUsed(ctx, "ABC123", now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, again.UsedAt)
	assert.True(t, now.Equal(*again.UsedAt))
}

func TestRegistrationCodeRepository_ClaimExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistrationCodeRepository(recordstore.NewMemory())

	_, err := repo.Create(ctx, registration.RegistrationCode{Code: "OLD111", ExpiresAt: now, CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	_, err = repo.Claim(ctx, "OLD111", nil, now)
	assert.ErrorIs(t, err, registration.ErrInvalidOrExpiredCode)

	_, err = repo.Claim(ctx, "NOPE00", nil, now)
	assert.ErrorIs(t, err, registration.ErrInvalidOrExpiredCode)
}

func TestPasswordResetRepository_OneTokenPerEmail(t *testing.T) {
	ctx := context.Background()
	driver := recordstore.NewMemory()
	repo := NewPasswordResetRepository(driver)

	_, err := repo.Save(ctx, auth.PasswordResetToken{Email: "ana@attendly.io", TokenHash: "old", ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)
	_, err = repo.Save(ctx, auth.PasswordResetToken{Email: "ana@attendly.io", TokenHash: "new", ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	require.NoError(t, err)

	all, err := recordstore.NewCollection[passwordResetDoc](driver, kindPasswordResets).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.Claim(ctx, "ana@attendly.io", "old", now)
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	claimed, err := repo.Claim(ctx, "ana@attendly.io", "new", now)
	require.NoError(t, err)
	assert.True(t, claimed.Used)

	_, err = repo.Claim(ctx, "ana@attendly.io", "new", now)
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	_, err = repo.Claim(ctx, "nobody@attendly.io", "new", now)
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestPasswordResetRepository_ClaimExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewPasswordResetRepository(recordstore.NewMemory())

	_, err := repo.Save(ctx, auth.PasswordResetToken{Email: "ana@attendly.io", TokenHash: "h", ExpiresAt: now, CreatedAt: now.Add(-24 * time.Hour)})
	require.NoError(t, err)

	_, err = repo.Claim(ctx, "ana@attendly.io", "h", now)
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	stored, err := repo.GetByEmail(ctx, "ana@attendly.io")
	require.NoError(t, err)
	assert.False(t, stored.Used)
}

func TestTransactor_NestedCallsJoinTheLock(t *testing.T) {
	tx := NewTransactor(recordstore.NewMemory())

	calls := 0
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		return tx.WithinTransaction(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
