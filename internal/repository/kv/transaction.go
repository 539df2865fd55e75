package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/recordstore"
)

const (
	ledgerLock = "ledger"
	lockTTL    = 30 * time.Second
	lockWait   = 10 * time.Second
)

type lockKey struct{}

type transactor struct {
	driver recordstore.Driver
}

// NewTransactor serializes transactions on a store-wide lock. There is no
// rollback: fn must validate before it writes.
func NewTransactor(driver recordstore.Driver) database.Transactor {
	return &transactor{driver: driver}
}

// WithinTransaction joins the caller's lock when ctx already holds it.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(lockKey{}).(bool); held {
		return fn(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, lockWait)
	unlock, err := t.driver.Lock(waitCtx, ledgerLock, lockTTL)
	cancel()
	if err != nil {
		return fmt.Errorf("acquire %s lock: %w", ledgerLock, err)
	}
	defer unlock()

	return fn(context.WithValue(ctx, lockKey{}, true))
}

// storeErr maps record store errors onto the errors repositories return.
func storeErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, recordstore.ErrNotFound):
		return notFound
	case errors.Is(err, recordstore.ErrVersionConflict):
		return database.ErrConcurrentUpdate
	default:
		return err
	}
}
