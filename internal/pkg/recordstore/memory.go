package recordstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// =============================================================================
// MEMORY DRIVER - process-local records (tests, dev, single instance)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[string]map[int64]Record
	seq     map[string]int64

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]map[int64]Record),
		seq:     make(map[string]int64),
		locks:   make(map[string]chan struct{}),
	}
}

func (m *Memory) All(_ context.Context, kind string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID := m.records[kind]
	out := make([]Record, 0, len(byID))
	for _, rec := range byID {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Get(_ context.Context, kind string, id int64) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[kind][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return copyRecord(rec), nil
}

func (m *Memory) Insert(_ context.Context, kind string, data []byte) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq[kind]++
	rec := Record{ID: m.seq[kind], Version: 1, Data: append([]byte(nil), data...)}

	if m.records[kind] == nil {
		m.records[kind] = make(map[int64]Record)
	}
	m.records[kind][rec.ID] = rec
	return copyRecord(rec), nil
}

func (m *Memory) Update(_ context.Context, kind string, id int64, expectedVersion int64, data []byte) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[kind][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Version != expectedVersion {
		return Record{}, ErrVersionConflict
	}

	rec.Version++
	rec.Data = append([]byte(nil), data...)
	m.records[kind][id] = rec
	return copyRecord(rec), nil
}

// Lock blocks until the named lock is free or ctx is done. ttl is ignored:
// a crashed holder takes the whole process with it.
func (m *Memory) Lock(ctx context.Context, name string, _ time.Duration) (func(), error) {
	m.locksMu.Lock()
	ch, ok := m.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[name] = ch
	}
	m.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ErrLockTimeout
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func copyRecord(rec Record) Record {
	rec.Data = append([]byte(nil), rec.Data...)
	return rec
}
