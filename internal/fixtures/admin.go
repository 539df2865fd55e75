package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/service/auth"
)

// AdminSeed describes the first administrator account. Without it nobody could
// generate the registration codes every other account needs.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

func (s AdminSeed) Enabled() bool {
	return s.Email != "" && s.Password != ""
}

// EnsureAdmin creates the seed administrator unless an account with that email
// already exists. It reports whether an account was created.
func EnsureAdmin(ctx context.Context, repo employee.EmployeeRepository, seed AdminSeed, now time.Time) (bool, error) {
	if !seed.Enabled() {
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(seed.Email))
	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to look up seed admin: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return false, err
	}

	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "Administrator"
	}

	created, err := repo.Create(ctx, employee.Employee{
		EmployeeCode: auth.NewEmployeeCode(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		Status:       employee.StatusOffline,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, employee.ErrEmailAlreadyRegistered) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create seed admin: %w", err)
	}

	slog.Info("Seed administrator created", "employee_id", created.ID, "email", email)
	return true, nil
}
