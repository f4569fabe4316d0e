package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"valyntra-workers/internal/common/logger"
	"valyntra-workers/internal/models"
)

const providerCacheKey = "providers:active"

// ProviderLoader is anything that can produce the active provider catalog.
type ProviderLoader interface {
	ActiveProviders(ctx context.Context) ([]models.Provider, error)
}

// ProviderCache is a provider read cache that must be dropped after the
// catalog changes.
type ProviderCache interface {
	Invalidate(ctx context.Context) error
}

// CachedProviderSource keeps a JSON copy of the active catalog in Redis.
// Concurrent misses share one load from the underlying source. Cache errors
// never fail a read; they fall through to the source.
type CachedProviderSource struct {
	source ProviderLoader
	redis  redis.UniversalClient
	ttl    time.Duration
	group  singleflight.Group
	logger logger.Logger
}

func NewCachedProviderSource(source ProviderLoader, client redis.UniversalClient, ttl time.Duration, log logger.Logger) *CachedProviderSource {
	return &CachedProviderSource{
		source: source,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "provider-cache"}),
	}
}

func (c *CachedProviderSource) ActiveProviders(ctx context.Context) ([]models.Provider, error) {
	val, err := c.redis.Get(ctx, providerCacheKey).Result()
	switch {
	case err == nil:
		var providers []models.Provider
		if jsonErr := json.Unmarshal([]byte(val), &providers); jsonErr == nil {
			return providers, nil
		}
		c.logger.Warn("discarding unreadable provider cache entry", nil)
	case !stderrors.Is(err, redis.Nil):
		c.logger.Warn("provider cache read failed", map[string]interface{}{"error": err.Error()})
	}

	v, err, _ := c.group.Do(providerCacheKey, func() (interface{}, error) {
		providers, err := c.source.ActiveProviders(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, providers)
		return providers, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Provider), nil
}

func (c *CachedProviderSource) store(ctx context.Context, providers []models.Provider) {
	data, err := json.Marshal(providers)
	if err != nil {
		c.logger.Warn("provider cache encode failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.redis.Set(ctx, providerCacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("provider cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

// Invalidate drops the cached catalog. Call it after providers change.
func (c *CachedProviderSource) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, providerCacheKey).Err()
}
