package kv

import (
	"context"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

type registrationCodeRepositoryImpl struct {
	codes *recordstore.Collection[registrationCodeDoc]
	tx    database.Transactor
}

func NewRegistrationCodeRepository(driver recordstore.Driver) registration.RegistrationCodeRepository {
	return &registrationCodeRepositoryImpl{
		codes: recordstore.NewCollection[registrationCodeDoc](driver, kindRegistrationCodes),
		tx:    NewTransactor(driver),
	}
}

func (r *registrationCodeRepositoryImpl) Create(ctx context.Context, code registration.RegistrationCode) (registration.RegistrationCode, error) {
	err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, exists, err := r.codes.First(ctx, byCode(code.Code))
		if err != nil {
			return err
		}
		if exists {
			return registration.ErrCodeExists
		}
		_, err = r.codes.Append(ctx, newRegistrationCodeDoc(code))
		return err
	})
	if err != nil {
		return registration.RegistrationCode{}, err
	}
	return code, nil
}

func (r *registrationCodeRepositoryImpl) GetByCode(ctx context.Context, code string) (registration.RegistrationCode, error) {
	entry, found, err := r.codes.First(ctx, byCode(code))
	if err != nil {
		return registration.RegistrationCode{}, err
	}
	if !found {
		return registration.RegistrationCode{}, registration.ErrInvalidOrExpiredCode
	}
	return entry.Value.toEntity(), nil
}

func (r *registrationCodeRepositoryImpl) Claim(ctx context.Context, code string, employeeID *int64, now time.Time) (registration.RegistrationCode, error) {
	return r.update(ctx, code, func(d *registrationCodeDoc) error {
		if !d.toEntity().IsValid(now) {
			return registration.ErrInvalidOrExpiredCode
		}
		d.Used, d.UsedAt, d.UsedBy = true, &now, employeeID
		return nil
	})
}

func (r *registrationCodeRepositoryImpl) MarkUsed(ctx context.Context, code string, now time.Time) (registration.RegistrationCode, error) {
	return r.update(ctx, code, func(d *registrationCodeDoc) error {
		if !d.Used {
			d.Used, d.UsedAt = true, &now
		}
		return nil
	})
}

func (r *registrationCodeRepositoryImpl) update(ctx context.Context, code string, patch func(*registrationCodeDoc) error) (registration.RegistrationCode, error) {
	entry, found, err := r.codes.First(ctx, byCode(code))
	if err != nil {
		return registration.RegistrationCode{}, err
	}
	if !found {
		return registration.RegistrationCode{}, registration.ErrInvalidOrExpiredCode
	}

	updated, err := r.codes.UpdateByID(ctx, entry.ID, patch)
	if err != nil {
		return registration.RegistrationCode{}, storeErr(err, registration.ErrInvalidOrExpiredCode)
	}
	return updated.Value.toEntity(), nil
}

func byCode(code string) func(registrationCodeDoc) bool {
	return func(d registrationCodeDoc) bool { return d.Code == code }
}
