package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/repository/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultExpiration = 10 * time.Minute

type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{
		rdb: rdb,
	}
}

func (c *Cache) Get(ctx context.Context, code string) ([]domain.Coupon, error) {
	key := cache.CouponKey(code)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// 键不存在
			return nil, cache.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get coupon from redis %w", err)
	}

	var coupons []domain.Coupon
	err = json.Unmarshal([]byte(val), &coupons)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal coupon data %w", err)
	}
	return coupons, nil
}

func (c *Cache) Set(ctx context.Context, code string, coupons []domain.Coupon) error {
	key := cache.CouponKey(code)
	data, err := json.Marshal(coupons)
	if err != nil {
		return fmt.Errorf("failed to marshal coupon data %w", err)
	}
	return c.rdb.Set(ctx, key, data, defaultExpiration).Err()
}

func (c *Cache) Del(ctx context.Context, code string) error {
	return c.rdb.Del(ctx, cache.CouponKey(code)).Err()
}
