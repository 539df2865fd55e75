package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/export"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/repository/kv"
	attendanceService "github.com/attendly/attendly-backend-go/internal/service/attendance"
	authService "github.com/attendly/attendly-backend-go/internal/service/auth"
	employeeService "github.com/attendly/attendly-backend-go/internal/service/employee"
	leaveService "github.com/attendly/attendly-backend-go/internal/service/leave"
	overtimeService "github.com/attendly/attendly-backend-go/internal/service/overtime"
	payrollService "github.com/attendly/attendly-backend-go/internal/service/payroll"
	registrationService "github.com/attendly/attendly-backend-go/internal/service/registration"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router    http.Handler
	jwt       jwt.Service
	employees employee.EmployeeRepository
	mail      *capturingEmailService
}

type capturingEmailService struct {
	links []string
}

func (c *capturingEmailService) SendPasswordReset(_, resetLink, _ string) error {
	c.links = append(c.links, resetLink)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	driver := recordstore.NewMemory()
	jwtService, err := jwt.NewJWTService("handler-test-secret", "1h")
	require.NoError(t, err)

	clk := clock.Real()
	tx := kv.NewTransactor(driver)
	employeeRepo := kv.NewEmployeeRepository(driver)
	codeRepo := kv.NewRegistrationCodeRepository(driver)
	overtimeRepo := kv.NewOvertimeRepository(driver)
	mail := &capturingEmailService{}

	handlers := Handlers{
		Auth: NewAuthHandler(authService.NewAuthService(
			tx, employeeRepo, codeRepo, kv.NewPasswordResetRepository(driver), jwtService, mail,
			authService.ResetSettings{URL: "http://localhost:3000/reset-password", Expiry: 24 * time.Hour}, clk)),
		Registration: NewRegistrationCodeHandler(registrationService.NewRegistrationCodeService(codeRepo, clk, 7)),
		Employee:     NewEmployeeHandler(employeeService.NewEmployeeService(tx, employeeRepo, clk)),
		Attendance: NewAttendanceHandler(attendanceService.NewAttendanceService(
			tx, kv.NewAttendanceRepository(driver), employeeRepo, clk, time.UTC)),
		Leave: NewLeaveHandler(leaveService.NewLeaveService(
			tx, kv.NewLeaveRequestRepository(driver), employeeRepo, clk)),
		Overtime: NewOvertimeHandler(overtimeService.NewOvertimeService(tx, overtimeRepo, employeeRepo, clk)),
		Payroll: NewPayrollHandler(payrollService.NewPayrollService(
			tx, kv.NewPayrollRepository(driver), employeeRepo, overtimeRepo,
			payrollService.NewCalculator(payrollService.DefaultSettings()), clk)),
	}

	cfg := RouterConfig{AppName: "attendly-test", Version: "test", Env: "test", AllowedOrigins: []string{"*"}}
	return &testServer{
		router:    NewRouter(cfg, jwtService, driver, employeeRepo, handlers),
		jwt:       jwtService,
		employees: employeeRepo,
		mail:      mail,
	}
}

// tokenFor stores an employee with role and returns a bearer token for it.
func (s *testServer) tokenFor(t *testing.T, email string, role user.Role) string {
	t.Helper()
	created, err := s.employees.Create(context.Background(), employee.Employee{
		EmployeeCode: authService.NewEmployeeCode(),
		Name:         "Test " + string(role),
		Email:        email,
		Role:         role,
		Status:       employee.StatusOffline,
	})
	require.NoError(t, err)

	token, _, err := s.jwt.GenerateAccessToken(user.Principal{EmployeeID: created.ID, Email: email, Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestRouter_RegistrationFlow(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.tokenFor(t, "admin@attendly.io", user.RoleAdmin)

	rec := srv.do(t, http.MethodPost, "/api/v1/registration-codes/", adminToken, map[string]any{"expiry_days": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var code struct {
		Code string `json:"code"`
		Role string `json:"role"`
	}
	decodeData(t, rec, &code)
	assert.Len(t, code.Code, 6)
	assert.Equal(t, "employee", code.Role)

	rec = srv.do(t, http.MethodGet, "/api/v1/registration-codes/"+code.Code+"/validate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var valid struct {
		Valid bool `json:"valid"`
	}
	decodeData(t, rec, &valid)
	assert.True(t, valid.Valid)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"code":             code.Code,
		"name":             "Budi Santoso",
		"email":            "budi@attendly.io",
		"password":         "s3cret-pass",
		"confirm_password": "s3cret-pass",
		"department":       "Finance",
		"designation":      "Analyst",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var token struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &token)
	require.NotEmpty(t, token.AccessToken)

	// The code is claimed by registration.
	rec = srv.do(t, http.MethodGet, "/api/v1/registration-codes/"+code.Code+"/validate", "", nil)
	decodeData(t, rec, &valid)
	assert.False(t, valid.Valid)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "budi@attendly.io",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/employees/me", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
	}
	decodeData(t, rec, &me)
	assert.Equal(t, "budi@attendly.io", me.Email)
}

func TestRouter_PasswordReset(t *testing.T) {
	srv := newTestServer(t)
	srv.tokenFor(t, "ana@attendly.io", user.RoleEmployee)

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "nobody@attendly.io"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, srv.mail.links)

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "ana@attendly.io"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, srv.mail.links, 1)
	link, err := url.Parse(srv.mail.links[0])
	require.NoError(t, err)
	token := link.Query().Get("token")

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/reset-password/validate", "", map[string]string{"email": "ana@attendly.io", "token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	var valid struct {
		Valid bool `json:"valid"`
	}
	decodeData(t, rec, &valid)
	assert.True(t, valid.Valid)

	reset := map[string]string{"email": "ana@attendly.io", "token": token, "password": "new-password", "confirm_password": "new-password"}
	rec = srv.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ana@attendly.io", "password": "new-password"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", reset)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AttendanceCycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.tokenFor(t, "siti@attendly.io", user.RoleEmployee)

	rec := srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/attendance/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		State      string `json:"state"`
		CanCheckIn bool   `json:"can_check_in"`
	}
	decodeData(t, rec, &status)
	assert.Equal(t, "checked_out", status.State)
	assert.False(t, status.CanCheckIn)
}

func TestRouter_Authorization(t *testing.T) {
	srv := newTestServer(t)
	employeeToken := srv.tokenFor(t, "emp@attendly.io", user.RoleEmployee)
	hrToken := srv.tokenFor(t, "hr@attendly.io", user.RoleHR)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/employees/me", "", http.StatusUnauthorized},
		{"employee lists payroll", http.MethodGet, "/api/v1/payroll/", employeeToken, http.StatusForbidden},
		{"employee generates code", http.MethodPost, "/api/v1/registration-codes/", employeeToken, http.StatusForbidden},
		{"hr marks paid", http.MethodPut, "/api/v1/payroll/1/paid", hrToken, http.StatusForbidden},
		{"hr lists employees", http.MethodGet, "/api/v1/employees/", hrToken, http.StatusOK},
		{"unknown leave request", http.MethodGet, "/api/v1/leave/99", employeeToken, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/v1/overtime/abc", employeeToken, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_DemotedTokenLosesPermissions(t *testing.T) {
	srv := newTestServer(t)
	ownerToken := srv.tokenFor(t, "owner@attendly.io", user.RoleAdmin)
	staleToken := srv.tokenFor(t, "deputy@attendly.io", user.RoleAdmin)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/", staleToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	deputy, err := srv.employees.GetByEmail(context.Background(), "deputy@attendly.io")
	require.NoError(t, err)
	rec = srv.do(t, http.MethodPut, fmt.Sprintf("/api/v1/employees/%d/role", deputy.ID), ownerToken, map[string]string{"role": "employee"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/payroll/", staleToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodPut, "/api/v1/attendance/override", staleToken, map[string]any{
		"employee_id": deputy.ID, "date": "2025-03-10", "field": "check_in", "timestamp": "2025-03-10T09:00:00Z",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/employees/me", staleToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Role string `json:"role"`
	}
	decodeData(t, rec, &me)
	assert.Equal(t, "employee", me.Role)
}

func TestRouter_PayrollExport(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.tokenFor(t, "admin@attendly.io", user.RoleAdmin)

	rec := srv.do(t, http.MethodGet, "/api/v1/payroll/export?period_month=3&period_year=2025", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())

	rec = srv.do(t, http.MethodGet, "/api/v1/payroll/export?period_month=13&period_year=2025", adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_Healthz(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
