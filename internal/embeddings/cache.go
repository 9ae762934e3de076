package embeddings

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes text-to-vector lookups in front of an Embedder.
//
// Fetch never returns an error: embedding failures degrade to an empty
// vector, which downstream similarity math treats as zero similarity.
// Cache-check and populate are a single atomic step per text key, so
// concurrent requests for the same text trigger at most one external
// computation.
type Cache struct {
	embedder Embedder
	logger   *zap.Logger
	metrics  *Metrics

	mu      sync.RWMutex
	vectors map[string][]float32
	group   singleflight.Group
}

// NewCache creates a cache backed by the given embedder.
func NewCache(embedder Embedder, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		embedder: embedder,
		logger:   logger,
		metrics:  NewMetrics(logger),
		vectors:  make(map[string][]float32),
	}
}

// Fetch returns the embedding for text, computing and caching it on first
// use. An exact string match is required for a cache hit. Returns nil when
// the embedder fails or yields an empty vector; failed lookups are not
// cached, so a later call retries.
func (c *Cache) Fetch(ctx context.Context, text string) []float32 {
	c.mu.RLock()
	vec, ok := c.vectors[text]
	c.mu.RUnlock()
	if ok {
		c.metrics.RecordLookup(ctx, true, 0, nil)
		return vec
	}

	start := time.Now()
	result, err, _ := c.group.Do(text, func() (interface{}, error) {
		// Re-check under the flight: an earlier flight for this key may
		// have populated the cache between our read and Do.
		c.mu.RLock()
		cached, ok := c.vectors[text]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		vec, err := c.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		if len(vec) > 0 {
			c.mu.Lock()
			c.vectors[text] = vec
			c.mu.Unlock()
		}
		return vec, nil
	})
	c.metrics.RecordLookup(ctx, false, time.Since(start), err)

	if err != nil {
		c.logger.Warn("embedding fetch failed", zap.Error(err))
		return nil
	}

	vec, _ = result.([]float32)
	return vec
}

// Len returns the number of cached embeddings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}
