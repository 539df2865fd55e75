package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const registrationCodeColumns = `code, expires_at, used, used_at, used_by, created_by, role, created_at`

type registrationCodeRepositoryImpl struct {
	db *database.DB
}

func NewRegistrationCodeRepository(db *database.DB) registration.RegistrationCodeRepository {
	return &registrationCodeRepositoryImpl{db: db}
}

func scanRegistrationCode(row pgx.Row) (registration.RegistrationCode, error) {
	var c registration.RegistrationCode
	err := row.Scan(&c.Code, &c.ExpiresAt, &c.Used, &c.UsedAt, &c.UsedBy, &c.CreatedBy, &c.Role, &c.CreatedAt)
	return c, err
}

func (r *registrationCodeRepositoryImpl) Create(ctx context.Context, code registration.RegistrationCode) (registration.RegistrationCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO registration_codes (code, expires_at, created_by, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + registrationCodeColumns

	created, err := scanRegistrationCode(q.QueryRow(ctx, query, code.Code, code.ExpiresAt, code.CreatedBy, code.Role, code.CreatedAt))
	if err != nil {
		if isUniqueViolation(err, "registration_codes_pkey") {
			return registration.RegistrationCode{}, registration.ErrCodeExists
		}
		return registration.RegistrationCode{}, fmt.Errorf("failed to create registration code: %w", err)
	}
	return created, nil
}

func (r *registrationCodeRepositoryImpl) GetByCode(ctx context.Context, code string) (registration.RegistrationCode, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanRegistrationCode(q.QueryRow(ctx, `SELECT `+registrationCodeColumns+` FROM registration_codes WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.RegistrationCode{}, registration.ErrInvalidOrExpiredCode
		}
		return registration.RegistrationCode{}, fmt.Errorf("failed to get registration code: %w", err)
	}
	return found, nil
}

// Claim is a single conditional UPDATE, so two registrations racing for one
// code cannot both win.
func (r *registrationCodeRepositoryImpl) Claim(ctx context.Context, code string, employeeID *int64, now time.Time) (registration.RegistrationCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE registration_codes
		SET used = TRUE, used_at = $2, used_by = $3
		WHERE code = $1 AND used = FALSE AND expires_at > $2
		RETURNING ` + registrationCodeColumns

	claimed, err := scanRegistrationCode(q.QueryRow(ctx, query, code, now, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.RegistrationCode{}, registration.ErrInvalidOrExpiredCode
		}
		return registration.RegistrationCode{}, fmt.Errorf("failed to claim registration code: %w", err)
	}
	return claimed, nil
}

func (r *registrationCodeRepositoryImpl) MarkUsed(ctx context.Context, code string, now time.Time) (registration.RegistrationCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE registration_codes
		SET used = TRUE, used_at = COALESCE(used_at, $2)
		WHERE code = $1
		RETURNING ` + registrationCodeColumns

	used, err := scanRegistrationCode(q.QueryRow(ctx, query, code, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.RegistrationCode{}, registration.ErrInvalidOrExpiredCode
		}
		return registration.RegistrationCode{}, fmt.Errorf("failed to mark registration code used: %w", err)
	}
	return used, nil
}
