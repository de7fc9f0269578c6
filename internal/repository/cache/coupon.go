package cache

import (
	"context"
	"fmt"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"github.com/pkg/errors"
)

const (
	CouponPrefix = "coupon"
)

var ErrKeyNotFound = errors.New("key not found")

// CouponCache 按小写券码缓存同一个码下所有年份的券
type CouponCache interface {
	Get(ctx context.Context, code string) ([]domain.Coupon, error)
	Set(ctx context.Context, code string, coupons []domain.Coupon) error
	Del(ctx context.Context, code string) error
}

func CouponKey(code string) string {
	return fmt.Sprintf("%s:%s", CouponPrefix, code)
}
