package employee

import (
	"context"
	"testing"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
	"github.com/attendly/attendly-backend-go/internal/repository/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc       employee.EmployeeService
	jwt       jwt.Service
	employees employee.EmployeeRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	driver := recordstore.NewMemory()
	jwtService, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	require.NoError(t, err)

	employees := kv.NewEmployeeRepository(driver)
	return &testEnv{
		svc:       NewEmployeeService(kv.NewTransactor(driver), employees, clock.NewFake(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))),
		jwt:       jwtService,
		employees: employees,
	}
}

func (e *testEnv) createEmployee(t *testing.T, name, email, department string, role user.Role) employee.Employee {
	t.Helper()
	emp, err := e.employees.Create(context.Background(), employee.Employee{
		EmployeeCode: "EMP-" + email[:4],
		Name:         name,
		Email:        email,
		Department:   department,
		Role:         role,
		Status:       employee.StatusOffline,
	})
	require.NoError(t, err)
	return emp
}

func (e *testEnv) as(t *testing.T, emp employee.Employee) context.Context {
	t.Helper()
	ctx, err := jwt.NewContext(context.Background(), e.jwt, user.Principal{EmployeeID: emp.ID, Email: emp.Email, Role: emp.Role})
	require.NoError(t, err)
	return ctx
}

func ptr[T any](v T) *T { return &v }

func TestGetEmployee_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createEmployee(t, "Ana", "ana@attendly.io", "Engineering", user.RoleEmployee)
	ben := env.createEmployee(t, "Ben", "ben@attendly.io", "Finance", user.RoleEmployee)
	boss := env.createEmployee(t, "Boss", "boss@attendly.io", "Engineering", user.RoleManager)

	me, err := env.svc.GetMe(env.as(t, ana))
	require.NoError(t, err)
	assert.Equal(t, ana.ID, me.ID)

	_, err = env.svc.GetEmployee(env.as(t, ana), ben.ID)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	got, err := env.svc.GetEmployee(env.as(t, boss), ben.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ben", got.Name)

	_, err = env.svc.GetEmployee(env.as(t, boss), 999)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListEmployees_Filters(t *testing.T) {
	env := newTestEnv(t)
	boss := env.createEmployee(t, "Boss", "boss@attendly.io", "Engineering", user.RoleManager)
	env.createEmployee(t, "Ana", "ana@attendly.io", "Engineering", user.RoleEmployee)
	env.createEmployee(t, "Ben", "ben@attendly.io", "Finance", user.RoleEmployee)
	ctx := env.as(t, boss)

	all, err := env.svc.ListEmployees(ctx, employee.EmployeeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	require.Len(t, all.Employees, 3)
	assert.Equal(t, "Ana", all.Employees[0].Name)

	eng, err := env.svc.ListEmployees(ctx, employee.EmployeeFilter{Department: ptr("engineering")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), eng.TotalCount)

	search, err := env.svc.ListEmployees(ctx, employee.EmployeeFilter{Search: ptr("BEN")})
	require.NoError(t, err)
	require.Len(t, search.Employees, 1)
	assert.Equal(t, "Ben", search.Employees[0].Name)

	_, err = env.svc.ListEmployees(ctx, employee.EmployeeFilter{Role: ptr("owner")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	ana, err := env.employees.GetByEmail(context.Background(), "ana@attendly.io")
	require.NoError(t, err)
	_, err = env.svc.ListEmployees(env.as(t, ana), employee.EmployeeFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestUpdateProfileAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ana := env.createEmployee(t, "Ana", "ana@attendly.io", "Engineering", user.RoleEmployee)
	ctx := env.as(t, ana)

	resp, err := env.svc.UpdateProfile(ctx, employee.UpdateProfileRequest{
		Name:      ptr(" Ana Putri "),
		AvatarURL: ptr("https://cdn.attendly.io/ana.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Putri", resp.Name)
	assert.Equal(t, "Engineering", resp.Department)
	require.NotNil(t, resp.AvatarURL)

	resp, err = env.svc.UpdateProfile(ctx, employee.UpdateProfileRequest{AvatarURL: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, resp.AvatarURL)

	_, err = env.svc.UpdateProfile(ctx, employee.UpdateProfileRequest{Name: ptr("  ")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	resp, err = env.svc.UpdateStatus(ctx, employee.UpdateStatusRequest{Status: "Busy"})
	require.NoError(t, err)
	assert.Equal(t, string(employee.StatusBusy), resp.Status)

	_, err = env.svc.UpdateStatus(ctx, employee.UpdateStatusRequest{Status: "sleeping"})
	require.ErrorAs(t, err, &verrs)

	stored, err := env.employees.GetByID(context.Background(), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, ana.EmployeeCode, stored.EmployeeCode)
}

func TestUpdateRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createEmployee(t, "Root", "root@attendly.io", "Ops", user.RoleAdmin)
	hr := env.createEmployee(t, "Hana", "hana@attendly.io", "People", user.RoleHR)
	ana := env.createEmployee(t, "Ana", "ana@attendly.io", "Engineering", user.RoleEmployee)

	resp, err := env.svc.UpdateRole(env.as(t, admin), employee.UpdateRoleRequest{ID: ana.ID, Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleManager), resp.Role)

	_, err = env.svc.UpdateRole(env.as(t, admin), employee.UpdateRoleRequest{ID: admin.ID, Role: "employee"})
	assert.ErrorIs(t, err, employee.ErrCannotChangeOwnRole)

	_, err = env.svc.UpdateRole(env.as(t, hr), employee.UpdateRoleRequest{ID: ana.ID, Role: "admin"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = env.svc.UpdateRole(env.as(t, admin), employee.UpdateRoleRequest{ID: 999, Role: "hr"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestSetBaseSalary(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createEmployee(t, "Root", "root@attendly.io", "Ops", user.RoleAdmin)
	ana := env.createEmployee(t, "Ana", "ana@attendly.io", "Engineering", user.RoleEmployee)

	resp, err := env.svc.SetBaseSalary(env.as(t, admin), employee.SetBaseSalaryRequest{ID: ana.ID, BaseSalary: decimal.RequireFromString("7250.555")})
	require.NoError(t, err)
	require.NotNil(t, resp.BaseSalary)
	assert.True(t, resp.BaseSalary.Equal(decimal.RequireFromString("7250.56")))

	_, err = env.svc.SetBaseSalary(env.as(t, admin), employee.SetBaseSalaryRequest{ID: ana.ID, BaseSalary: decimal.Zero})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}
