package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/AnhMinhTruongHoang/bookstore-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// The cached value is the same JSON array of {_id, quantity, detail}
// records the storefront persists, keyed carts:<owner>.
func cacheKey(ownerID string) string {
	return "carts:" + ownerID
}

func (r RedisCache) Get(ctx context.Context, ownerID string) (domain.Cart, error) {
	key := cacheKey(ownerID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, ErrCacheMiss
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err2 := json.Unmarshal(data, &lines); err2 != nil {
		return domain.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return domain.Cart{OwnerID: ownerID, Lines: lines}, nil
}

func (r RedisCache) Set(ctx context.Context, ownerID string, cart domain.Cart) error {
	key := cacheKey(ownerID)

	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	jsonLines, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, jsonLines, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, ownerID string) error {
	key := cacheKey(ownerID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}
