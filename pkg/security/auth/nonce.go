package auth

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// NonceCache remembers nonces for the allowed skew so a captured request
// cannot be replayed inside its validity window.
type NonceCache struct {
	cache *ttlcache.Cache[string, struct{}]
	ttl   time.Duration
}

// NewNonceCache creates and starts a cache. capacity 0 means unbounded.
func NewNonceCache(ttl time.Duration, capacity uint64) *NonceCache {
	opts := []ttlcache.Option[string, struct{}]{
		ttlcache.WithTTL[string, struct{}](ttl),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, struct{}](capacity))
	}

	c := &NonceCache{
		cache: ttlcache.New(opts...),
		ttl:   ttl,
	}
	go c.cache.Start()
	return c
}

// Seen records nonce and reports whether it was already present.
func (c *NonceCache) Seen(nonce string) bool {
	_, loaded := c.cache.GetOrSet(nonce, struct{}{})
	return loaded
}

// Len returns the number of remembered nonces.
func (c *NonceCache) Len() int {
	return c.cache.Len()
}

// TTL returns how long a nonce is remembered.
func (c *NonceCache) TTL() time.Duration {
	return c.ttl
}

// Stop halts the expiry loop.
func (c *NonceCache) Stop() {
	c.cache.Stop()
}
