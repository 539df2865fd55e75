package recordstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// REDIS DRIVER - one hash per kind, one field per record
// =============================================================================

const lockPollInterval = 25 * time.Millisecond

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var extendLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

type Redis struct {
	rdb    *redis.Client
	prefix string
}

// envelope is the value stored in the kind hash.
type envelope struct {
	Version int64           `json:"v"`
	Data    json.RawMessage `json:"d"`
}

func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return NewRedisFromClient(rdb, cfg.Prefix), nil
}

func NewRedisFromClient(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "attendly"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) hashKey(kind string) string { return r.prefix + ":" + kind }
func (r *Redis) seqKey(kind string) string  { return r.prefix + ":" + kind + ":seq" }
func (r *Redis) lockKey(name string) string { return r.prefix + ":lock:" + name }

func (r *Redis) All(ctx context.Context, kind string) ([]Record, error) {
	fields, err := r.rdb.HGetAll(ctx, r.hashKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	out := make([]Record, 0, len(fields))
	for field, raw := range fields {
		rec, err := decodeField(field, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Redis) Get(ctx context.Context, kind string, id int64) (Record, error) {
	field := strconv.FormatInt(id, 10)
	raw, err := r.rdb.HGet(ctx, r.hashKey(kind), field).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeField(field, raw)
}

func (r *Redis) Insert(ctx context.Context, kind string, data []byte) (Record, error) {
	id, err := r.rdb.Incr(ctx, r.seqKey(kind)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	raw, err := json.Marshal(envelope{Version: 1, Data: data})
	if err != nil {
		return Record{}, err
	}

	ok, err := r.rdb.HSetNX(ctx, r.hashKey(kind), strconv.FormatInt(id, 10), raw).Result()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return Record{}, fmt.Errorf("%s sequence reused id %d: %w", kind, id, ErrVersionConflict)
	}
	return Record{ID: id, Version: 1, Data: data}, nil
}

func (r *Redis) Update(ctx context.Context, kind string, id int64, expectedVersion int64, data []byte) (Record, error) {
	key := r.hashKey(kind)
	field := strconv.FormatInt(id, 10)
	var updated Record

	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, field).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		current, err := decodeField(field, raw)
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}

		next, err := json.Marshal(envelope{Version: current.Version + 1, Data: data})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field, next)
			return nil
		})
		if err != nil {
			return err
		}

		updated = Record{ID: id, Version: current.Version + 1, Data: data}
		return nil
	}, key)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, redis.TxFailedErr):
		return Record{}, ErrVersionConflict
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVersionConflict):
		return Record{}, err
	default:
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Lock takes a lease on name with SET NX PX. While held, the lease is
// extended every ttl/3, so it only lapses after ttl if the holder dies or
// loses its connection for that long.
func (r *Redis) Lock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := r.lockKey(name)
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ok {
			return r.holdLease(key, token, ttl), nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

// holdLease keeps key alive until the returned func is called, then deletes it.
func (r *Redis) holdLease(key, token string, ttl time.Duration) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		renew := time.NewTicker(max(ttl/3, lockPollInterval))
		defer renew.Stop()
		for {
			select {
			case <-stop:
				return
			case <-renew.C:
				renewCtx, cancel := context.WithTimeout(context.Background(), ttl/3+time.Second)
				held, err := extendLockScript.Run(renewCtx, r.rdb, []string{key}, token, ttl.Milliseconds()).Int()
				cancel()
				if err == nil && held == 0 {
					slog.Warn("Record store lock lease lost", "key", key)
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// Released with a fresh context so a cancelled request still frees the lease.
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = releaseLockScript.Run(releaseCtx, r.rdb, []string{key}, token).Err()
		})
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func decodeField(field, raw string) (Record, error) {
	id, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid record id %q: %w", field, err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Record{}, fmt.Errorf("invalid record %d: %w", id, err)
	}
	return Record{ID: id, Version: env.Version, Data: []byte(env.Data)}, nil
}
