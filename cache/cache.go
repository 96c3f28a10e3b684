// Package cache provides the query answer cache: fingerprinting, pluggable
// stores (in-memory, Redis) and a singleflight front that guarantees at most
// one resolution runs per fingerprint at a time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/juricore/juricore/core"
	"github.com/juricore/juricore/logging"
	"github.com/juricore/juricore/metrics"
)

// CachedAnswer is the stored result of a fully resolved query.
type CachedAnswer struct {
	Answer   string    `json:"answer"`
	Mode     string    `json:"mode"`
	StoredAt time.Time `json:"stored_at"`
}

// Store persists answers by fingerprint. Get returns ok=false on a miss or
// an expired entry.
type Store interface {
	Get(ctx context.Context, fingerprint string) (CachedAnswer, bool, error)
	Set(ctx context.Context, fingerprint string, answer CachedAnswer, ttl time.Duration) error
}

// Fingerprint derives the cache key from the normalized query text, its
// user/conversation scope and the answer mode. Same question in the same
// scope and mode hits the same entry.
func Fingerprint(q core.Query, mode string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
	h := sha256.New()
	h.Write([]byte(normalized))
	h.Write([]byte{'|'})
	h.Write([]byte(q.UserID))
	h.Write([]byte{'|'})
	h.Write([]byte(q.ConversationID))
	h.Write([]byte{'|'})
	h.Write([]byte(mode))
	return hex.EncodeToString(h.Sum(nil))
}

// Cache fronts a Store with a singleflight group so concurrent identical
// fingerprints share one resolution instead of racing the backend.
type Cache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger logging.Logger
}

// Options configures a Cache.
type Options struct {
	TTL    time.Duration
	Logger logging.Logger
}

// New creates a Cache over the given store.
func New(store Store, optFns ...func(o *Options)) *Cache {
	opts := Options{TTL: 15 * time.Minute, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Cache{store: store, ttl: opts.TTL, logger: opts.Logger}
}

// Lookup checks the store for a live entry. Store errors degrade to a miss;
// the cache never fails a query.
func (c *Cache) Lookup(ctx context.Context, fingerprint string) (CachedAnswer, bool) {
	answer, ok, err := c.store.Get(ctx, fingerprint)
	if err != nil {
		c.logger.Warn("cache.lookup.failed", "error", err.Error())
		metrics.CacheMisses.Inc()
		return CachedAnswer{}, false
	}
	if !ok {
		metrics.CacheMisses.Inc()
		return CachedAnswer{}, false
	}
	metrics.CacheHits.Inc()
	return answer, true
}

// Resolve returns the cached answer for the fingerprint or, on a miss, runs
// the loader exactly once across concurrent callers and writes the result
// back before returning it. shared reports whether this caller received a
// result computed by another in-flight call.
func (c *Cache) Resolve(
	ctx context.Context,
	fingerprint string,
	loader func() (CachedAnswer, error),
) (answer CachedAnswer, shared bool, err error) {
	if cached, ok := c.Lookup(ctx, fingerprint); ok {
		return cached, false, nil
	}

	v, err, shared := c.group.Do(fingerprint, func() (interface{}, error) {
		// Re-check inside the flight: a concurrent caller may have stored
		// the answer between our miss and acquiring the flight.
		if cached, ok, err := c.store.Get(ctx, fingerprint); err == nil && ok {
			return cached, nil
		}

		result, err := loader()
		if err != nil {
			return CachedAnswer{}, err
		}
		if storeErr := c.store.Set(ctx, fingerprint, result, c.ttl); storeErr != nil {
			c.logger.Warn("cache.store.failed", "error", storeErr.Error())
		} else {
			metrics.CacheStores.Inc()
		}
		return result, nil
	})
	if err != nil {
		return CachedAnswer{}, shared, err
	}
	return v.(CachedAnswer), shared, nil
}
