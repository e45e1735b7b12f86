// Package ratecache memoizes resolved hourly prices so repeated requests for
// the same region and instance type skip the catalog scan entirely.
package ratecache

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// KeyValueCache is the host-supplied store that priced results live in.
// Values are numeric strings.
type KeyValueCache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryCache is a process-local KeyValueCache. Entries never expire and the
// last writer wins.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get implements KeyValueCache.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set implements KeyValueCache.
func (c *MemoryCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Key builds the cache key for a region code and instance type,
// e.g. "us-west-2:t3.micro".
func Key(regionCode, instanceType string) string {
	return regionCode + ":" + instanceType
}

// RateCache stores hourly prices keyed by region code and instance type on top
// of a KeyValueCache. There is no invalidation; a stale price is served until
// the backing store evicts it.
type RateCache struct {
	store   KeyValueCache
	logger  zerolog.Logger
	metrics *Metrics
}

// New wraps store. metrics may be nil.
func New(store KeyValueCache, logger zerolog.Logger, metrics *Metrics) *RateCache {
	return &RateCache{store: store, logger: logger, metrics: metrics}
}

// Get returns the cached hourly price. An entry that does not parse as a
// decimal is reported as a miss.
func (c *RateCache) Get(regionCode, instanceType string) (decimal.Decimal, bool) {
	key := Key(regionCode, instanceType)
	raw, ok := c.store.Get(key)
	if !ok || raw == "" {
		c.metrics.miss()
		return decimal.Zero, false
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", raw).
			Msg("ignoring unparseable cached rate")
		c.metrics.miss()
		return decimal.Zero, false
	}

	c.metrics.hit()
	return price, true
}

// Set records the hourly price for a region code and instance type.
func (c *RateCache) Set(regionCode, instanceType string, price decimal.Decimal) {
	c.store.Set(Key(regionCode, instanceType), price.String())
	c.metrics.store()
}
