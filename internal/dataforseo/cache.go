package dataforseo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "dataforseo:ranked:"

var ErrEmptyRedisAddress = errors.New("redis address is required")

// Cache keeps raw ranked keyword responses per domain.
type Cache interface {
	Get(ctx context.Context, domain string) ([]RankedKeyword, bool, error)
	Set(ctx context.Context, domain string, keywords []RankedKeyword) error
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	if address == "" {
		return nil, ErrEmptyRedisAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func CacheKey(domain string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(domain))
}

func (c *RedisCache) Get(ctx context.Context, domain string) ([]RankedKeyword, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(domain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}

	var keywords []RankedKeyword
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached keywords: %w", err)
	}
	return keywords, true, nil
}

func (c *RedisCache) Set(ctx context.Context, domain string, keywords []RankedKeyword) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(domain), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
