package datasource

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/paddock-parser/internal/logger"
	"github.com/yourusername/paddock-parser/internal/metrics"
)

const batchCacheKey = "batch"

// CachedCollector reuses a collector's last successful batch until its TTL
// expires. Failed collections are never cached.
type CachedCollector struct {
	inner  Collector
	cache  *cache.Cache
	ttl    time.Duration
	logger *logger.CollectorLogger
}

// NewCachedCollector wraps inner with a batch cache.
func NewCachedCollector(inner Collector, ttl time.Duration, log logrus.FieldLogger) *CachedCollector {
	return &CachedCollector{
		inner:  inner,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
		logger: logger.NewCollectorLogger(log, inner.Name()),
	}
}

// Name returns the wrapped collector's name
func (c *CachedCollector) Name() string {
	return c.inner.Name()
}

// Collect serves the cached batch when present, otherwise delegates.
func (c *CachedCollector) Collect(ctx context.Context) (*Batch, error) {
	if cached, found := c.cache.Get(batchCacheKey); found {
		if batch, ok := cached.(*Batch); ok {
			c.logger.LogCacheHit(batch.Len())
			metrics.RecordCacheHit(c.Name())
			return batch, nil
		}
	}

	batch, err := c.inner.Collect(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(batchCacheKey, batch, c.ttl)
	return batch, nil
}

// Invalidate drops the cached batch.
func (c *CachedCollector) Invalidate() {
	c.cache.Delete(batchCacheKey)
}
