package auth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
	"github.com/attendly/attendly-backend-go/internal/repository/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

type resetMail struct {
	to        string
	link      string
	expiresAt string
}

type fakeEmailService struct {
	sent []resetMail
}

func (f *fakeEmailService) SendPasswordReset(to, resetLink, expiresAt string) error {
	f.sent = append(f.sent, resetMail{to: to, link: resetLink, expiresAt: expiresAt})
	return nil
}

type testEnv struct {
	svc       auth.AuthService
	jwt       jwt.Service
	codes     registration.RegistrationCodeRepository
	employees employee.EmployeeRepository
	mail      *fakeEmailService
	clock     *clock.Fake
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	driver := recordstore.NewMemory()
	jwtService, err := jwt.NewJWTService(testSecret, "1h")
	require.NoError(t, err)

	env := &testEnv{
		jwt:       jwtService,
		codes:     kv.NewRegistrationCodeRepository(driver),
		employees: kv.NewEmployeeRepository(driver),
		mail:      &fakeEmailService{},
		clock:     clock.NewFake(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)),
	}
	env.svc = NewAuthService(
		kv.NewTransactor(driver),
		env.employees,
		env.codes,
		kv.NewPasswordResetRepository(driver),
		jwtService,
		env.mail,
		ResetSettings{URL: "https://app.attendly.io/reset-password", Expiry: 24 * time.Hour},
		env.clock,
	)
	return env
}

func (e *testEnv) addCode(t *testing.T, code string, role user.Role, expiresIn time.Duration) {
	t.Helper()
	_, err := e.codes.Create(context.Background(), registration.RegistrationCode{
		Code:      code,
		ExpiresAt: e.clock.Now().Add(expiresIn),
		Role:      role,
		CreatedAt: e.clock.Now(),
	})
	require.NoError(t, err)
}

func registerRequest(code, email string) auth.RegisterRequest {
	return auth.RegisterRequest{
		Code:            code,
		Name:            "Ana Putri",
		Email:           email,
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		Department:      "Engineering",
		Designation:     "Engineer",
	}
}

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(t, "A1B2C3", user.RoleManager, 24*time.Hour)

	resp, err := env.svc.Register(context.Background(), registerRequest("a1b2c3", "Ana@Attendly.io"))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ana@attendly.io", resp.Employee.Email)
	assert.Equal(t, string(user.RoleManager), resp.Employee.Role)
	assert.Equal(t, string(employee.StatusOffline), resp.Employee.Status)
	assert.Regexp(t, `^EMP-[0-9A-F]{8}$`, resp.Employee.EmployeeCode)

	code, err := env.codes.GetByCode(context.Background(), "A1B2C3")
	require.NoError(t, err)
	assert.True(t, code.Used)
	require.NotNil(t, code.UsedBy)
	assert.Equal(t, resp.Employee.ID, *code.UsedBy)

	token, err := env.jwt.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	assert.NotNil(t, token)
}

func TestRegister_CodeErrors(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(t, "A1B2C3", user.RoleEmployee, 24*time.Hour)
	env.addCode(t, "DDDDDD", user.RoleEmployee, time.Hour)

	_, err := env.svc.Register(context.Background(), registerRequest("FFFFFF", "ana@attendly.io"))
	assert.ErrorIs(t, err, registration.ErrInvalidOrExpiredCode)

	_, err = env.svc.Register(context.Background(), registerRequest("A1B2C3", "ana@attendly.io"))
	require.NoError(t, err)

	_, err = env.svc.Register(context.Background(), registerRequest("A1B2C3", "ben@attendly.io"))
	assert.ErrorIs(t, err, registration.ErrInvalidOrExpiredCode)

	env.clock.Advance(2 * time.Hour)
	_, err = env.svc.Register(context.Background(), registerRequest("DDDDDD", "ben@attendly.io"))
	assert.ErrorIs(t, err, registration.ErrInvalidOrExpiredCode)

	_, err = env.employees.GetByEmail(context.Background(), "ben@attendly.io")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRegister_DuplicateEmailKeepsCode(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(t, "A1B2C3", user.RoleEmployee, 24*time.Hour)
	env.addCode(t, "0A0B0C", user.RoleEmployee, 24*time.Hour)

	_, err := env.svc.Register(context.Background(), registerRequest("A1B2C3", "ana@attendly.io"))
	require.NoError(t, err)

	_, err = env.svc.Register(context.Background(), registerRequest("0A0B0C", "ANA@attendly.io"))
	assert.ErrorIs(t, err, employee.ErrEmailAlreadyRegistered)

	code, err := env.codes.GetByCode(context.Background(), "0A0B0C")
	require.NoError(t, err)
	assert.False(t, code.Used)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(r *auth.RegisterRequest)
		field  string
	}{
		{"bad code", func(r *auth.RegisterRequest) { r.Code = "XYZ" }, "code"},
		{"missing name", func(r *auth.RegisterRequest) { r.Name = " " }, "name"},
		{"bad email", func(r *auth.RegisterRequest) { r.Email = "ana" }, "email"},
		{"short password", func(r *auth.RegisterRequest) { r.Password, r.ConfirmPassword = "short", "short" }, "password"},
		{"mismatch", func(r *auth.RegisterRequest) { r.ConfirmPassword = "other-horse" }, "confirm_password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registerRequest("A1B2C3", "ana@attendly.io")
			tt.mutate(&req)

			_, err := env.svc.Register(context.Background(), req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.field)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.addCode(t, "A1B2C3", user.RoleEmployee, 24*time.Hour)

	registered, err := env.svc.Register(context.Background(), registerRequest("A1B2C3", "ana@attendly.io"))
	require.NoError(t, err)

	resp, err := env.svc.Login(context.Background(), auth.LoginRequest{Email: " ANA@attendly.io", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.Employee.ID, resp.Employee.ID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = env.svc.Login(context.Background(), auth.LoginRequest{Email: "ana@attendly.io", Password: "wrong-horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = env.svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@attendly.io", Password: "correct-horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// registerAna creates an account with password "correct-horse".
func (e *testEnv) registerAna(t *testing.T) {
	t.Helper()
	e.addCode(t, "A1B2C3", user.RoleEmployee, 24*time.Hour)
	_, err := e.svc.Register(context.Background(), registerRequest("A1B2C3", "ana@attendly.io"))
	require.NoError(t, err)
}

// lastResetToken returns the token from the most recent reset link.
func (e *testEnv) lastResetToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, e.mail.sent)
	link, err := url.Parse(e.mail.sent[len(e.mail.sent)-1].link)
	require.NoError(t, err)
	return link.Query().Get("token")
}

func resetRequest(token, password string) auth.ResetPasswordRequest {
	return auth.ResetPasswordRequest{
		Email:           "ana@attendly.io",
		Token:           token,
		Password:        password,
		ConfirmPassword: password,
	}
}

func TestResetPassword_Flow(t *testing.T) {
	env := newTestEnv(t)
	env.registerAna(t)
	ctx := context.Background()

	require.NoError(t, env.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "Ana@Attendly.io"}))
	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, "ana@attendly.io", env.mail.sent[0].to)
	assert.Contains(t, env.mail.sent[0].link, "https://app.attendly.io/reset-password?")
	assert.Equal(t, "2025-03-02 08:00 UTC", env.mail.sent[0].expiresAt)
	token := env.lastResetToken(t)
	assert.Len(t, token, 64)

	valid, err := env.svc.ValidateResetToken(ctx, auth.ValidateResetTokenRequest{Email: "ana@attendly.io", Token: token})
	require.NoError(t, err)
	assert.True(t, valid.Valid)

	require.NoError(t, env.svc.ResetPassword(ctx, resetRequest(token, "battery-staple")))

	_, err = env.svc.Login(ctx, auth.LoginRequest{Email: "ana@attendly.io", Password: "battery-staple"})
	assert.NoError(t, err)
	_, err = env.svc.Login(ctx, auth.LoginRequest{Email: "ana@attendly.io", Password: "correct-horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	err = env.svc.ResetPassword(ctx, resetRequest(token, "another-pass"))
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	valid, err = env.svc.ValidateResetToken(ctx, auth.ValidateResetTokenRequest{Email: "ana@attendly.io", Token: token})
	require.NoError(t, err)
	assert.False(t, valid.Valid)
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.registerAna(t)
	ctx := context.Background()

	require.NoError(t, env.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "ana@attendly.io"}))
	token := env.lastResetToken(t)

	env.clock.Advance(24 * time.Hour)

	err := env.svc.ResetPassword(ctx, resetRequest(token, "battery-staple"))
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	_, err = env.svc.Login(ctx, auth.LoginRequest{Email: "ana@attendly.io", Password: "correct-horse"})
	assert.NoError(t, err)
}

func TestForgotPassword_NewRequestReplacesOlderToken(t *testing.T) {
	env := newTestEnv(t)
	env.registerAna(t)
	ctx := context.Background()

	require.NoError(t, env.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "ana@attendly.io"}))
	older := env.lastResetToken(t)
	require.NoError(t, env.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "ana@attendly.io"}))
	newer := env.lastResetToken(t)
	require.NotEqual(t, older, newer)

	err := env.svc.ResetPassword(ctx, resetRequest(older, "battery-staple"))
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)

	assert.NoError(t, env.svc.ResetPassword(ctx, resetRequest(newer, "battery-staple")))
}

func TestForgotPassword_UnknownEmailSendsNothing(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.ForgotPassword(context.Background(), auth.ForgotPasswordRequest{Email: "nobody@attendly.io"})
	require.NoError(t, err)
	assert.Empty(t, env.mail.sent)

	valid, err := env.svc.ValidateResetToken(context.Background(), auth.ValidateResetTokenRequest{Email: "nobody@attendly.io", Token: "abc"})
	require.NoError(t, err)
	assert.False(t, valid.Valid)
}

func TestResetPassword_Validation(t *testing.T) {
	env := newTestEnv(t)

	req := resetRequest("", "short")
	req.ConfirmPassword = "different"
	err := env.svc.ResetPassword(context.Background(), req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "token")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "confirm_password")
}
