package local

import (
	"context"
	"strings"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/repository/cache"
	"github.com/gotomicro/ego/core/elog"
	ca "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache 本地一级缓存，靠 redis 的 keyspace 通知做失效
type Cache struct {
	rdb    *redis.Client
	logger *elog.Component
	c      *ca.Cache
}

func NewLocalCache(rdb *redis.Client, c *ca.Cache) *Cache {
	l := &Cache{
		rdb:    rdb,
		logger: elog.DefaultLogger,
		c:      c,
	}
	go l.loop(context.Background())
	return l
}

func (l *Cache) Get(_ context.Context, code string) ([]domain.Coupon, error) {
	key := cache.CouponKey(code)
	v, ok := l.c.Get(key)
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return v.([]domain.Coupon), nil
}

func (l *Cache) Set(_ context.Context, code string, coupons []domain.Coupon) error {
	key := cache.CouponKey(code)
	l.c.Set(key, coupons, ca.DefaultExpiration)
	return nil
}

func (l *Cache) Del(_ context.Context, code string) error {
	l.c.Delete(cache.CouponKey(code))
	return nil
}

// 监控redis里的优惠券键，远端变更时让本地缓存失效
func (l *Cache) loop(ctx context.Context) {
	pubsub := l.rdb.PSubscribe(ctx, "__keyspace@*__:"+cache.CouponPrefix+":*")
	defer pubsub.Close()
	ch := pubsub.Channel()
	for msg := range ch {
		idx := strings.Index(msg.Channel, ":")
		if idx < 0 {
			continue
		}
		key := msg.Channel[idx+1:]
		l.c.Delete(key)
		l.logger.Info("本地优惠券缓存失效", elog.String("key", key), elog.String("op", msg.Payload))
	}
}
