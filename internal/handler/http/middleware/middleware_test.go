package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
	"github.com/attendly/attendly-backend-go/internal/repository/kv"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router    http.Handler
	jwt       jwt.Service
	employees employee.EmployeeRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	svc, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	require.NoError(t, err)
	employees := kv.NewEmployeeRepository(recordstore.NewMemory())

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired(employees))
	r.With(RequirePermission(user.PermissionPayrollPay)).Get("/pay", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return &fixture{router: r, jwt: svc, employees: employees}
}

// token stores an employee with role and returns a bearer header issued for claimed.
func (f *fixture) token(t *testing.T, email string, stored, claimed user.Role) string {
	t.Helper()
	emp, err := f.employees.Create(context.Background(), employee.Employee{
		EmployeeCode: "EMP-" + email[:3],
		Name:         email,
		Email:        email,
		Role:         stored,
		Status:       employee.StatusOffline,
	})
	require.NoError(t, err)

	s, _, err := f.jwt.GenerateAccessToken(user.Principal{EmployeeID: emp.ID, Email: emp.Email, Role: claimed})
	require.NoError(t, err)
	return "Bearer " + s
}

func (f *fixture) get(header string) int {
	req := httptest.NewRequest(http.MethodGet, "/pay", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthAndPermission(t *testing.T) {
	f := newFixture(t)

	unknown, _, err := f.jwt.GenerateAccessToken(user.Principal{EmployeeID: 404, Email: "ghost@attendly.io", Role: user.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"unknown employee", "Bearer " + unknown, http.StatusUnauthorized},
		{"missing permission", f.token(t, "hr@attendly.io", user.RoleHR, user.RoleHR), http.StatusForbidden},
		{"allowed", f.token(t, "admin@attendly.io", user.RoleAdmin, user.RoleAdmin), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.get(tt.header))
		})
	}
}

func TestAuthRequired_UsesStoredRole(t *testing.T) {
	f := newFixture(t)

	demoted := f.token(t, "old@attendly.io", user.RoleEmployee, user.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, f.get(demoted))

	promoted := f.token(t, "new@attendly.io", user.RoleAdmin, user.RoleEmployee)
	assert.Equal(t, http.StatusNoContent, f.get(promoted))
}
