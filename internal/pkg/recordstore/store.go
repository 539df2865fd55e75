// Package recordstore keeps typed records grouped by kind.
//
// Every record is stored under its own identifier with a version counter.
// Writers update a record by presenting the version they read; a mismatch
// means another writer got there first and the update is rejected with
// ErrVersionConflict instead of silently overwriting it.
package recordstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record was modified concurrently")
	ErrLockTimeout     = errors.New("timed out waiting for store lock")
	ErrUnavailable     = errors.New("record store unavailable")
)

// Record is the raw stored form of one item of a kind.
type Record struct {
	ID      int64
	Version int64
	Data    []byte
}

// Driver is the storage backend behind a Collection.
type Driver interface {
	// All returns every record of kind ordered by ascending ID.
	All(ctx context.Context, kind string) ([]Record, error)
	Get(ctx context.Context, kind string, id int64) (Record, error)
	// Insert assigns the next sequential ID of kind and stores data at version 1.
	Insert(ctx context.Context, kind string, data []byte) (Record, error)
	// Update replaces data when the stored version equals expectedVersion.
	Update(ctx context.Context, kind string, id int64, expectedVersion int64, data []byte) (Record, error)
	// Lock acquires the named store-wide lock. The returned func releases it.
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)
	Ping(ctx context.Context) error
	Close() error
}
