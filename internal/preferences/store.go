// Package preferences keeps per-user upvotes and reading lists and the
// shared store of user submissions.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// ErrConflict is returned when an optimistic update keeps losing to
// concurrent writers.
var ErrConflict = errors.New("preferences: concurrent update conflict")

// UpdateFunc computes the next value of a key from its current value.
// current is nil when the key does not exist. It may be called more than
// once for a single Update.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a small key-value store with atomic read-modify-write.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored at key, or nil.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Update applies fn to the value at key under the store lock.
func (s *MemoryStore) Update(_ context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if v, ok := s.data[key]; ok {
		current = append([]byte(nil), v...)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), next...)
	return nil
}

// DefaultRedisRetries bounds the optimistic retries of RedisStore.Update.
const DefaultRedisRetries = 10

// RedisStore is a Store backed by Redis. Updates use WATCH/MULTI so that
// concurrent writers on other instances never lose each other's changes.
type RedisStore struct {
	client     *goredis.Client
	prefix     string
	maxRetries int
}

// NewRedisStore creates a RedisStore that namespaces keys with prefix.
func NewRedisStore(client *goredis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, maxRetries: DefaultRedisRetries}
}

// Get returns the value at key, or nil if the key does not exist.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Update applies fn inside an optimistic transaction on key.
func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := s.prefix + key

	txf := func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, k).Bytes()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if errors.Is(err, goredis.Nil) {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("redis update %s: %w", key, err)
	}
	return ErrConflict
}
