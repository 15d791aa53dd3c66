// Package reviewcache implements the two-tier response cache: an
// in-process layer in front of the persisted store.ResponseCacheStore,
// keyed by a content hash over everything that affects the AI response.
package reviewcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Cache fronts store.ResponseCacheStore with an in-process
// go-cache layer and rate-limits persisted writes.
type Cache struct {
	persisted    store.ResponseCacheStore
	inProcess    *gocache.Cache
	writeLimiter *rate.Limiter
}

// New constructs a Cache. writesPerMinute configures the token bucket
// guarding writes to the persisted store.
func New(persisted store.ResponseCacheStore, writesPerMinute int) *Cache {
	if writesPerMinute <= 0 {
		writesPerMinute = reviewmodel.DefaultCacheMaxWritesPerMin
	}
	return &Cache{
		persisted:    persisted,
		inProcess:    gocache.New(reviewmodel.ResponseCacheTTL, 10*time.Minute),
		writeLimiter: rate.NewLimiter(rate.Limit(float64(writesPerMinute)/60.0), writesPerMinute),
	}
}

// Key computes the content-hash cache key over everything that affects
// the AI response: the rendered prompt, the model identifier, and the
// temperature policy.
func Key(prompt, modelID, temperaturePolicy string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write([]byte(modelID))
	h.Write([]byte{0})
	h.Write([]byte(temperaturePolicy))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns a cached ReviewResult for key if present, not expired,
// and its stored JSON parses into a valid ReviewResult. A hit is
// recorded best-effort under a short timeout; lookup failures to
// record the hit never fail the read itself.
func (c *Cache) Lookup(repository, key string) (*reviewmodel.ReviewResult, bool) {
	now := time.Now()

	if cached, ok := c.inProcess.Get(key); ok {
		entry := cached.(cachedEntry)
		if !entry.expiresAt.After(now) {
			c.inProcess.Delete(key)
		} else {
			c.recordHitBestEffort(key, now)
			return entry.result, true
		}
	}

	rec, err := c.persisted.GetByContentHash(key)
	if err != nil {
		return nil, false
	}
	if !rec.ExpiresAt.After(now) {
		return nil, false
	}

	result, err := parseReviewResult(rec.ReviewJSON)
	if err != nil {
		logger.Warn("reviewcache: cached entry failed to parse as ReviewResult, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}

	c.inProcess.SetDefault(key, cachedEntry{result: result, expiresAt: rec.ExpiresAt})
	c.recordHitBestEffort(key, now)
	return result, true
}

func (c *Cache) recordHitBestEffort(key string, at time.Time) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.persisted.RecordHit(key, at); err != nil {
			logger.Warn("reviewcache: failed to record cache hit", zap.String("key", key), zap.Error(err))
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("reviewcache: recording cache hit timed out", zap.String("key", key))
	}
}

// Store writes a successful AI response into both cache tiers,
// respecting the write-rate limiter. A denied
// write is not an error: the response is simply not cached this time.
func (c *Cache) Store(repository, key, filePath string, result *reviewmodel.ReviewResult, tokens int, cost float64) {
	reviewJSON, err := json.Marshal(result)
	if err != nil {
		logger.Warn("reviewcache: failed to marshal review result for caching", zap.Error(err))
		return
	}

	now := time.Now()
	entity, err := reviewmodel.NewCacheEntity(repository, key, string(reviewJSON), filePath, tokens, cost, now)
	if err != nil {
		logger.Warn("reviewcache: invalid cache entity, skipping write", zap.Error(err))
		return
	}

	// The in-process tier has no write-rate limit of its own: a denied
	// persisted write still leaves this process served from memory.
	c.inProcess.SetDefault(key, cachedEntry{result: result, expiresAt: entity.ExpiresAt})

	if !c.writeLimiter.Allow() {
		logger.Warn("reviewcache: write rate limit exceeded, skipping persisted write", zap.String("key", key))
		return
	}

	rec := entityToRecord(entity)
	if err := c.persisted.Upsert(rec); err != nil {
		logger.Warn("reviewcache: failed to persist cache entry", zap.String("key", key), zap.Error(err))
	}
}

type cachedEntry struct {
	result    *reviewmodel.ReviewResult
	expiresAt time.Time
}

func parseReviewResult(data string) (*reviewmodel.ReviewResult, error) {
	var result reviewmodel.ReviewResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
