package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Store persists session values by id with an idle timeout
type Store interface {
	// Load returns the values of a live session; ok is false when the id is
	// unknown or expired
	Load(ctx context.Context, id string) (values map[string]string, ok bool, err error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	// Refresh restarts the idle timer of an existing session
	Refresh(ctx context.Context, id string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in the process using go-cache
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-process store. Expired entries are invisible
// immediately and evicted every cleanupInterval.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]string, bool, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false, nil
	}
	values, ok := v.(map[string]string)
	if !ok {
		return nil, false, fmt.Errorf("session %s holds %T", id, v)
	}
	return copyValues(values), true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	m.cache.Set(id, copyValues(values), ttl)
	return nil
}

// Refresh re-sets the entry, which restarts its expiration
func (m *MemoryStore) Refresh(_ context.Context, id string, ttl time.Duration) error {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil
	}
	m.cache.Set(id, v, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

// Count returns the number of cached sessions, including expired ones not
// yet evicted
func (m *MemoryStore) Count() int {
	return m.cache.ItemCount()
}

// RedisStore keeps sessions in Redis as JSON so that several instances can
// share them
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store over an existing client
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "aklujeats:session:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Load(ctx context.Context, id string) (map[string]string, bool, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, false, fmt.Errorf("failed to decode session: %w", err)
	}
	return values, true, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Refresh(ctx context.Context, id string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, r.key(id), ttl).Err(); err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
