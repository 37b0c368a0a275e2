package graphql

import (
	"encoding/json"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache keeps successful response payloads for a fixed TTL. Reads never
// extend an entry's lifetime. Expired entries are ignored on read and
// removed by Sweep.
type Cache struct {
	ttl     time.Duration
	entries *ttlcache.Cache[string, json.RawMessage]
}

// CacheStats is a point-in-time view used by the infra endpoint.
type CacheStats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl: ttl,
		entries: ttlcache.New[string, json.RawMessage](
			ttlcache.WithTTL[string, json.RawMessage](ttl),
			ttlcache.WithDisableTouchOnHit[string, json.RawMessage](),
		),
	}
}

// CacheKey identifies a request by operation name and variables. Map keys
// are sorted by encoding/json, so equal variables give equal keys.
func CacheKey(op string, vars map[string]any) string {
	b, err := json.Marshal(vars)
	if err != nil {
		return op
	}
	return op + ":" + string(b)
}

func (c *Cache) enabled() bool {
	return c != nil && c.ttl > 0
}

func (c *Cache) Get(key string) (json.RawMessage, bool) {
	if !c.enabled() {
		return nil, false
	}
	item := c.entries.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *Cache) Set(key string, data json.RawMessage) {
	if !c.enabled() {
		return
	}
	c.entries.Set(key, append(json.RawMessage(nil), data...), ttlcache.DefaultTTL)
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	if !c.enabled() {
		return 0
	}
	before := c.entries.Metrics().Evictions
	c.entries.DeleteExpired()
	return int(c.entries.Metrics().Evictions - before)
}

// Flush empties the cache.
func (c *Cache) Flush() {
	if c == nil {
		return
	}
	c.entries.DeleteAll()
}

// Len counts live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func (c *Cache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	m := c.entries.Metrics()
	return CacheStats{
		Entries:   c.entries.Len(),
		Hits:      m.Hits,
		Misses:    m.Misses,
		Evictions: m.Evictions,
	}
}
