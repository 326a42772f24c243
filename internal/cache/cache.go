package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chordsmith:"

// Cache stores small byte values with a TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// New returns a Redis cache when redisURL is set and reachable, otherwise an
// in-memory cache
func New(ctx context.Context, redisURL string) Cache {
	if redisURL == "" {
		log.Println("🗄️  Advisor cache: in-memory (REDIS_URL not set)")
		return NewMemory()
	}

	rc, err := NewRedis(ctx, redisURL)
	if err != nil {
		log.Printf("Warning: Redis not available, using in-memory cache: %v", err)
		return NewMemory()
	}
	log.Println("🗄️  Advisor cache: redis")
	return rc
}

// Redis is a Cache backed by go-redis
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and checks the connection
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is a process-local Cache
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}
