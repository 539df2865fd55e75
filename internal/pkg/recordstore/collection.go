package recordstore

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// maxUpdateAttempts bounds the read-modify-write loop in UpdateByID.
const maxUpdateAttempts = 5

type Entry[T any] struct {
	ID      int64
	Version int64
	Value   T
}

// Collection is a typed view over one record kind.
type Collection[T any] struct {
	driver Driver
	kind   string
}

func NewCollection[T any](driver Driver, kind string) *Collection[T] {
	return &Collection[T]{driver: driver, kind: kind}
}

func (c *Collection[T]) Kind() string {
	return c.kind
}

// GetAll returns every record of the collection. An empty collection is not an error.
func (c *Collection[T]) GetAll(ctx context.Context) ([]Entry[T], error) {
	records, err := c.driver.All(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.kind, err)
	}

	entries := make([]Entry[T], 0, len(records))
	for _, rec := range records {
		entry, err := c.decode(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Filter returns the records whose value satisfies keep.
func (c *Collection[T]) Filter(ctx context.Context, keep func(T) bool) ([]Entry[T], error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Entry[T], 0)
	for _, e := range all {
		if keep(e.Value) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// First returns the first record (lowest ID) whose value satisfies keep.
func (c *Collection[T]) First(ctx context.Context, keep func(T) bool) (Entry[T], bool, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return Entry[T]{}, false, err
	}
	for _, e := range all {
		if keep(e.Value) {
			return e, true, nil
		}
	}
	return Entry[T]{}, false, nil
}

func (c *Collection[T]) Get(ctx context.Context, id int64) (Entry[T], error) {
	rec, err := c.driver.Get(ctx, c.kind, id)
	if err != nil {
		return Entry[T]{}, err
	}
	return c.decode(rec)
}

// Append stores value under a newly assigned ID.
func (c *Collection[T]) Append(ctx context.Context, value T) (Entry[T], error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Entry[T]{}, fmt.Errorf("failed to encode %s: %w", c.kind, err)
	}

	rec, err := c.driver.Insert(ctx, c.kind, data)
	if err != nil {
		return Entry[T]{}, fmt.Errorf("failed to append %s: %w", c.kind, err)
	}
	return Entry[T]{ID: rec.ID, Version: rec.Version, Value: value}, nil
}

// Replace writes value over the record id when its version still equals expectedVersion.
func (c *Collection[T]) Replace(ctx context.Context, id int64, expectedVersion int64, value T) (Entry[T], error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Entry[T]{}, fmt.Errorf("failed to encode %s: %w", c.kind, err)
	}

	rec, err := c.driver.Update(ctx, c.kind, id, expectedVersion, data)
	if err != nil {
		return Entry[T]{}, err
	}
	return Entry[T]{ID: rec.ID, Version: rec.Version, Value: value}, nil
}

// UpdateByID applies patch to the current value of id and stores the result.
// A concurrent write between read and store makes it re-read and re-apply
// patch, up to maxUpdateAttempts times.
func (c *Collection[T]) UpdateByID(ctx context.Context, id int64, patch func(*T) error) (Entry[T], error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := c.Get(ctx, id)
		if err != nil {
			return Entry[T]{}, err
		}

		value := current.Value
		if err := patch(&value); err != nil {
			return Entry[T]{}, err
		}

		updated, err := c.Replace(ctx, id, current.Version, value)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return updated, err
	}
	return Entry[T]{}, fmt.Errorf("update %s %d: %w", c.kind, id, ErrVersionConflict)
}

func (c *Collection[T]) decode(rec Record) (Entry[T], error) {
	var value T
	if err := json.Unmarshal(rec.Data, &value); err != nil {
		return Entry[T]{}, fmt.Errorf("failed to decode %s %d: %w", c.kind, rec.ID, err)
	}
	return Entry[T]{ID: rec.ID, Version: rec.Version, Value: value}, nil
}
