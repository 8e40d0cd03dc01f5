package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/table-ordering/utils"
)

const (
	cacheKeyActiveSessions = "sessions:active_usernames"
	cacheKeyActiveMenu     = "menu:active"
	cacheTTL               = 30 * time.Second
)

// Cache stores JSON values for read-heavy listings that every poller hits.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache is used when REDIS_ADDR is configured.
type RedisCache struct {
	client     *redis.Client
	maxRetries int
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		}),
		maxRetries: 2,
	}
}

func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisCache) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	var raw []byte
	err := rc.withRetry(func() error {
		val, err := rc.client.Get(ctx, key).Bytes()
		if err != nil {
			return err
		}
		raw = val
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (rc *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rc.withRetry(func() error {
		return rc.client.Set(ctx, key, raw, ttl).Err()
	})
}

func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rc.withRetry(func() error {
		return rc.client.Del(ctx, keys...).Err()
	})
}

// withRetry retries network failures with exponential backoff and jitter.
func (rc *RedisCache) withRetry(operation func() error) error {
	var lastErr error
	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == rc.maxRetries || !isRetryableError(err) {
			break
		}

		backoff := min(50*(1<<attempt), 500)
		jitter := rand.IntN(backoff/2 + 1)
		time.Sleep(time.Duration(backoff/2+jitter) * time.Millisecond)
	}
	if errors.Is(lastErr, redis.Nil) {
		return lastErr
	}
	return fmt.Errorf("redis: %w", lastErr)
}

func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	msg := err.Error()
	for _, s := range []string{"connection refused", "connection reset", "timeout", "broken pipe", "no such host"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryCache is the single-process fallback when no Redis is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (mc *MemoryCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	mc.mu.RLock()
	entry, ok := mc.entries[key]
	mc.mu.RUnlock()
	if !ok || mc.now().After(entry.expiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(entry.raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (mc *MemoryCache) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	mc.mu.Lock()
	mc.entries[key] = memoryEntry{raw: raw, expiresAt: mc.now().Add(ttl)}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, k := range keys {
		delete(mc.entries, k)
	}
	mc.mu.Unlock()
	return nil
}

// NewCache returns a RedisCache when addr is set and reachable, otherwise a
// MemoryCache.
func NewCache(ctx context.Context, addr, password string, db int) Cache {
	if addr == "" {
		utils.InfoLogger.Println("REDIS_ADDR not set, using in-memory cache")
		return NewMemoryCache()
	}
	rc := NewRedisCache(addr, password, db)
	if err := rc.Ping(ctx); err != nil {
		utils.ErrorLogger.Warnf("Redis at %s unreachable (%v), using in-memory cache", addr, err)
		rc.Close()
		return NewMemoryCache()
	}
	utils.InfoLogger.Printf("Connected to redis at %s", addr)
	return rc
}

// cached reads key through cache, calling load on a miss. Cache failures are
// logged and never fail the request.
func cached[T any](ctx context.Context, cache Cache, key string, load func() (T, error)) (T, error) {
	var out T
	if cache != nil {
		hit, err := cache.GetJSON(ctx, key, &out)
		if err != nil {
			utils.ErrorLogger.Warnf("Cache get %s: %v", key, err)
		} else if hit {
			return out, nil
		}
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if cache != nil {
		if err := cache.SetJSON(ctx, key, out, cacheTTL); err != nil {
			utils.ErrorLogger.Warnf("Cache set %s: %v", key, err)
		}
	}
	return out, nil
}

func invalidate(ctx context.Context, cache Cache, keys ...string) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		utils.ErrorLogger.Warnf("Cache delete %v: %v", keys, err)
	}
}
