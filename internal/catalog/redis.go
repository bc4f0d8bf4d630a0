package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 10 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisCache) Get(ctx context.Context, restaurantID string) (*Menu, error) {
	data, err := r.client.Get(ctx, cacheKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var menu Menu
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}
	return &menu, nil
}

func (r *RedisCache) Set(ctx context.Context, restaurantID string, menu *Menu) error {
	data, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	// jitter keeps menus cached together from expiring together
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := r.client.Set(ctx, cacheKey(restaurantID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, restaurantID string) error {
	if err := r.client.Del(ctx, cacheKey(restaurantID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Ping reports whether redis answers.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func cacheKey(restaurantID string) string {
	return fmt.Sprintf("menu:%s", restaurantID)
}
