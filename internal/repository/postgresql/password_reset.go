package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const passwordResetColumns = `email, token_hash, expires_at, used, used_at, created_at`

type passwordResetRepositoryImpl struct {
	db *database.DB
}

func NewPasswordResetRepository(db *database.DB) auth.PasswordResetRepository {
	return &passwordResetRepositoryImpl{db: db}
}

func scanPasswordReset(row pgx.Row) (auth.PasswordResetToken, error) {
	var t auth.PasswordResetToken
	err := row.Scan(&t.Email, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.UsedAt, &t.CreatedAt)
	return t, err
}

// Save upserts on the email key, so a new request replaces the old token.
func (r *passwordResetRepositoryImpl) Save(ctx context.Context, token auth.PasswordResetToken) (auth.PasswordResetToken, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO password_reset_tokens (email, token_hash, expires_at, used, used_at, created_at)
		VALUES ($1, $2, $3, FALSE, NULL, $4)
		ON CONFLICT (email) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			used = FALSE,
			used_at = NULL,
			created_at = EXCLUDED.created_at
		RETURNING ` + passwordResetColumns

	saved, err := scanPasswordReset(q.QueryRow(ctx, query, token.Email, token.TokenHash, token.ExpiresAt, token.CreatedAt))
	if err != nil {
		return auth.PasswordResetToken{}, fmt.Errorf("failed to save password reset token: %w", err)
	}
	return saved, nil
}

func (r *passwordResetRepositoryImpl) GetByEmail(ctx context.Context, email string) (auth.PasswordResetToken, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanPasswordReset(q.QueryRow(ctx, `SELECT `+passwordResetColumns+` FROM password_reset_tokens WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.PasswordResetToken{}, auth.ErrInvalidResetToken
		}
		return auth.PasswordResetToken{}, fmt.Errorf("failed to get password reset token: %w", err)
	}
	return found, nil
}

func (r *passwordResetRepositoryImpl) Claim(ctx context.Context, email, tokenHash string, now time.Time) (auth.PasswordResetToken, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE password_reset_tokens
		SET used = TRUE, used_at = $3
		WHERE email = $1 AND token_hash = $2 AND used = FALSE AND expires_at > $3
		RETURNING ` + passwordResetColumns

	claimed, err := scanPasswordReset(q.QueryRow(ctx, query, email, tokenHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.PasswordResetToken{}, auth.ErrInvalidResetToken
		}
		return auth.PasswordResetToken{}, fmt.Errorf("failed to claim password reset token: %w", err)
	}
	return claimed, nil
}
