package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis server. Entry expiry uses Redis TTLs.
type Redis struct {
	rdb *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// NewRedisFromURL connects to the server at connectionURL
// (e.g. redis://localhost:6379/0) and checks it answers a PING.
func NewRedisFromURL(ctx context.Context, connectionURL string) (*Redis, error) {
	options, err := redis.ParseURL(connectionURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	rdb := redis.NewClient(options)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	return &Redis{rdb: rdb}, nil
}

// Get looks up key. A missing key is not an error.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}
	return b, true, nil
}

// Set stores value with ttl. It is a no-op when ttl <= 0, since Redis would
// otherwise keep the key forever.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

// Close closes the underlying connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
