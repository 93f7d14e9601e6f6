// Package redis wraps a shared redis client with an in-memory fallback so
// callers keep working when no redis address is configured.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bazaarpanel/bazaar/logger"

	goredis "github.com/redis/go-redis/v9"
)

var (
	client  *goredis.Client
	ctx     = context.Background()
	enabled = false
	mu      sync.RWMutex
)

// In-memory fallback storage.
var (
	fallbackMu    sync.Mutex
	fallbackStore = make(map[string]fallbackEntry)
)

type fallbackEntry struct {
	value      string
	counter    int64
	expiration time.Time
}

// Init connects the shared client. An empty addr leaves the in-memory
// fallback active, which is the default for single-node deployments.
func Init(addr, password string, db int) error {
	mu.Lock()
	defer mu.Unlock()

	if addr == "" {
		enabled = false
		logger.Info("redis not configured, using in-memory fallback")
		return nil
	}

	c := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		enabled = false
		logger.Warning("redis unreachable, using in-memory fallback:", err)
		return nil
	}

	client = c
	enabled = true
	logger.Info("redis connected:", addr)
	return nil
}

// IsEnabled reports whether a real redis backend is in use.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Close releases the client if one was connected.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		err := client.Close()
		client = nil
		enabled = false
		return err
	}
	return nil
}

func expired(e fallbackEntry) bool {
	return !e.expiration.IsZero() && time.Now().After(e.expiration)
}

// Set stores a key with expiration.
func Set(key, value string, expiration time.Duration) error {
	if IsEnabled() {
		return client.Set(ctx, key, value, expiration).Err()
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	e := fallbackEntry{value: value}
	if expiration > 0 {
		e.expiration = time.Now().Add(expiration)
	}
	fallbackStore[key] = e
	return nil
}

// Get retrieves a value by key. A missing or expired key returns an error.
func Get(key string) (string, error) {
	if IsEnabled() {
		return client.Get(ctx, key).Result()
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	e, ok := fallbackStore[key]
	if !ok || expired(e) {
		delete(fallbackStore, key)
		return "", fmt.Errorf("key not found")
	}
	if e.counter != 0 && e.value == "" {
		return fmt.Sprintf("%d", e.counter), nil
	}
	return e.value, nil
}

// Incr increments a counter key and returns the new value.
func Incr(key string) (int64, error) {
	if IsEnabled() {
		return client.Incr(ctx, key).Result()
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	e, ok := fallbackStore[key]
	if !ok || expired(e) {
		e = fallbackEntry{}
	}
	e.counter++
	fallbackStore[key] = e
	return e.counter, nil
}

// Expire sets a key expiration.
func Expire(key string, expiration time.Duration) error {
	if IsEnabled() {
		return client.Expire(ctx, key, expiration).Err()
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	if e, ok := fallbackStore[key]; ok {
		e.expiration = time.Now().Add(expiration)
		fallbackStore[key] = e
	}
	return nil
}

// Del removes a key.
func Del(key string) error {
	if IsEnabled() {
		return client.Del(ctx, key).Err()
	}
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	delete(fallbackStore, key)
	return nil
}
