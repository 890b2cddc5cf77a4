package client

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/wondernetwork/wiu-go/pkg/cache"
)

const (
	// DefaultCacheTTL is how long server lists and finished jobs are kept.
	DefaultCacheTTL = 6 * time.Hour

	cacheNamespace = "wiu."
)

// CachingClient wraps an API with a read-through cache. Server lists and
// completed jobs are cached; submissions always reach the wrapped API.
type CachingClient struct {
	api    API
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

var _ API = (*CachingClient)(nil)

// CachingOption configures a CachingClient.
type CachingOption func(*CachingClient)

// WithTTL sets the lifetime of cached entries. Negative values are treated
// as zero, which the bundled backends take to mean "do not keep".
func WithTTL(ttl time.Duration) CachingOption {
	return func(c *CachingClient) {
		if ttl < 0 {
			ttl = 0
		}
		c.ttl = ttl
	}
}

// WithCacheLogger attaches a logger for cache hits, misses and backend errors.
func WithCacheLogger(logger *zap.Logger) CachingOption {
	return func(c *CachingClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCaching wraps api with backend.
//
//	api := client.NewCaching(c, cache.NewMemory(10*time.Minute))
func NewCaching(api API, backend cache.Cache, opts ...CachingOption) *CachingClient {
	c := &CachingClient{
		api:    api,
		cache:  backend,
		ttl:    DefaultCacheTTL,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Servers returns the cached server list, fetching and storing it on a miss.
func (c *CachingClient) Servers(ctx context.Context) ([]Server, error) {
	key := cacheNamespace + "servers"

	var servers []Server
	if c.lookup(ctx, "servers", key, &servers) {
		return servers, nil
	}

	servers, err := c.api.Servers(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, servers)
	return servers, nil
}

// Submit is never cached.
func (c *CachingClient) Submit(ctx context.Context, uri string, servers, tests []string, options map[string]any) (string, error) {
	return c.api.Submit(ctx, uri, servers, tests, options)
}

// SubmitRaw is never cached.
func (c *CachingClient) SubmitRaw(ctx context.Context, raw []byte) (string, error) {
	return c.api.SubmitRaw(ctx, raw)
}

// Retrieve returns a cached job when present. Fetched jobs are only cached
// once they are no longer in progress.
func (c *CachingClient) Retrieve(ctx context.Context, id string) (JobResult, error) {
	key := cacheNamespace + "job_" + id

	var job JobResult
	if c.lookup(ctx, "job", key, &job) {
		return job, nil
	}

	job, err := c.api.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.InProgress() {
		c.store(ctx, key, job)
	}
	return job, nil
}

// lookup decodes the entry under key into out. Backend failures and
// undecodable entries count as misses.
func (c *CachingClient) lookup(ctx context.Context, kind, key string, out any) bool {
	raw, found, err := c.cache.Get(ctx, key)
	if err != nil {
		recordCacheLookup(kind, "error")
		c.logger.Warn("wiu cache: get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		recordCacheLookup(kind, "miss")
		c.logger.Debug("wiu cache: miss", zap.String("key", key))
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		recordCacheLookup(kind, "error")
		c.logger.Warn("wiu cache: undecodable entry", zap.String("key", key), zap.Error(err))
		return false
	}
	recordCacheLookup(kind, "hit")
	c.logger.Debug("wiu cache: hit", zap.String("key", key))
	return true
}

func (c *CachingClient) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("wiu cache: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("wiu cache: set failed", zap.String("key", key), zap.Error(err))
	}
}
