package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Resource names the per-kind cache tables. Each kind carries its own TTL:
// orders change fastest, products and customers are slow-moving, reports sit
// in between.
type Resource string

const (
	ResourceOrders    Resource = "orders"
	ResourceProducts  Resource = "products"
	ResourceCustomers Resource = "customers"
	ResourceReport    Resource = "report"
)

// TTLFor returns the freshness window for a resource kind.
func TTLFor(resource Resource) time.Duration {
	switch resource {
	case ResourceOrders:
		return 60 * time.Second
	case ResourceReport:
		return 5 * time.Minute
	default:
		return 10 * time.Minute
	}
}

// CacheStore shields the upstream store API from repeated reads. Entries are
// keyed by (resource kind, normalized store identity); Set unconditionally
// overwrites; Get reports a miss once the resource TTL has passed. Write
// paths never invalidate entries: push is the real-time channel, the cache
// serves bulk reads.
type CacheStore interface {
	Get(resource Resource, key string) ([]byte, bool)
	Set(resource Resource, key string, payload []byte)
}

// NormalizeStoreKey reduces a store URL to a stable cache identity: scheme
// stripped, trailing slash stripped, host lowercased.
func NormalizeStoreKey(storeURL string) string {
	key := strings.TrimSpace(storeURL)
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimRight(key, "/")
	return strings.ToLower(key)
}

type memoryEntry struct {
	payload  []byte
	storedAt time.Time
}

// MemoryCache is the default CacheStore: per-process, lost on restart.
// Handlers run concurrently, so access is guarded by a RWMutex.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(resource Resource, key string) ([]byte, bool) {
	compound := string(resource) + ":" + key

	c.mu.RLock()
	entry, ok := c.entries[compound]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.storedAt) >= TTLFor(resource) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := c.entries[compound]; ok && cur.storedAt.Equal(entry.storedAt) {
			delete(c.entries, compound)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

func (c *MemoryCache) Set(resource Resource, key string, payload []byte) {
	compound := string(resource) + ":" + key
	c.mu.Lock()
	c.entries[compound] = memoryEntry{payload: payload, storedAt: c.now()}
	c.mu.Unlock()
}

// RedisCache is a CacheStore on the shared cache server, for deployments
// that already run one; the server's key expiry provides the TTL.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(resource Resource, key string) ([]byte, bool) {
	val, err := c.client.Get(context.Background(), "response:"+string(resource)+":"+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(resource Resource, key string, payload []byte) {
	c.client.Set(context.Background(), "response:"+string(resource)+":"+key, payload, TTLFor(resource))
}
