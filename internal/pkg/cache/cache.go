package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLDefault is the lifetime of read-through entries unless configured otherwise.
const TTLDefault = 300 * time.Second

// Key prefixes
const (
	PrefixLookup = "banlist:lookup:"
	PrefixPublic = "banlist:public:"
)

// ErrUnavailable is returned when no Redis client is configured.
var ErrUnavailable = errors.New("cache not available")

// Cache is a JSON value cache with per-entry TTL.
type Cache interface {
	// Get decodes the entry into dest. found is false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// New wraps a Redis client. A nil client yields a cache that always misses.
func New(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Key joins parts with ':' after a prefix, e.g. Key(PrefixLookup, "qq", "12345", "approved").
func Key(prefix string, parts ...string) string {
	return prefix + strings.Join(parts, ":")
}
