package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
)

type EmployeeLookup interface {
	GetByID(ctx context.Context, id int64) (employee.Employee, error)
}

// AuthRequired rejects requests whose verified token does not carry an access
// principal, then reloads the employee so the role in force is the stored one
// and not the role the token was issued with.
func AuthRequired(employees EmployeeLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := jwt.PrincipalFromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, "Invalid or missing access token")
				return
			}

			current, err := employees.GetByID(r.Context(), principal.EmployeeID)
			if err != nil {
				if errors.Is(err, employee.ErrEmployeeNotFound) {
					response.Unauthorized(w, "Account no longer exists")
					return
				}
				response.HandleError(w, err)
				return
			}
			principal.Role = current.Role
			principal.Email = current.Email

			next.ServeHTTP(w, r.WithContext(jwt.WithPrincipal(r.Context(), principal)))
		})
	}
}
