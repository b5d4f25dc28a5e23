package textgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "textgen:response:"

// Cache stores completions keyed by a request fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string, ttl time.Duration) error
}

// RedisCache keeps completions in Redis string keys.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, text string, ttl time.Duration) error {
	return c.client.Set(ctx, key, text, ttl).Err()
}

// cacheKey fingerprints everything that influences a completion.
func cacheKey(model string, req Request) string {
	temp := "default"
	if req.Temperature != nil {
		temp = strconv.FormatFloat(*req.Temperature, 'f', -1, 64)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%t", model, req.System, req.User, temp, req.JSON)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
