package kv

import (
	"context"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type passwordResetRepositoryImpl struct {
	tokens *recordstore.Collection[passwordResetDoc]
	tx     database.Transactor
}

func NewPasswordResetRepository(driver recordstore.Driver) auth.PasswordResetRepository {
	return &passwordResetRepositoryImpl{
		tokens: recordstore.NewCollection[passwordResetDoc](driver, kindPasswordResets),
		tx:     NewTransactor(driver),
	}
}

// Save keeps one record per email and overwrites it on every request.
func (r *passwordResetRepositoryImpl) Save(ctx context.Context, token auth.PasswordResetToken) (auth.PasswordResetToken, error) {
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		entry, exists, err := r.tokens.First(ctx, byResetEmail(token.Email))
		if err != nil {
			return err
		}
		if !exists {
			_, err = r.tokens.Append(ctx, newPasswordResetDoc(token))
			return err
		}
		_, err = r.tokens.UpdateByID(ctx, entry.ID, func(d *passwordResetDoc) error {
			*d = newPasswordResetDoc(token)
			return nil
		})
		return storeErr(err, auth.ErrInvalidResetToken)
	})
	if err != nil {
		return auth.PasswordResetToken{}, err
	}
	return token, nil
}

func (r *passwordResetRepositoryImpl) GetByEmail(ctx context.Context, email string) (auth.PasswordResetToken, error) {
	entry, found, err := r.tokens.First(ctx, byResetEmail(email))
	if err != nil {
		return auth.PasswordResetToken{}, err
	}
	if !found {
		return auth.PasswordResetToken{}, auth.ErrInvalidResetToken
	}
	return entry.Value.toEntity(), nil
}

func (r *passwordResetRepositoryImpl) Claim(ctx context.Context, email, tokenHash string, now time.Time) (auth.PasswordResetToken, error) {
	entry, found, err := r.tokens.First(ctx, byResetEmail(email))
	if err != nil {
		return auth.PasswordResetToken{}, err
	}
	if !found {
		return auth.PasswordResetToken{}, auth.ErrInvalidResetToken
	}

	claimed, err := r.tokens.UpdateByID(ctx, entry.ID, func(d *passwordResetDoc) error {
		if token := d.toEntity(); !token.Matches(tokenHash) || !token.IsValid(now) {
			return auth.ErrInvalidResetToken
		}
		d.Used, d.UsedAt = true, &now
		return nil
	})
	if err != nil {
		return auth.PasswordResetToken{}, storeErr(err, auth.ErrInvalidResetToken)
	}
	return claimed.Value.toEntity(), nil
}

func byResetEmail(email string) func(passwordResetDoc) bool {
	return func(d passwordResetDoc) bool { return d.Email == email }
}
