package repository

import (
	"context"
	"errors"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/repository/cache"
	"gitee.com/flycash/event-registration-platform/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gotomicro/ego/core/elog"
)

type CouponRepository interface {
	// FindByCode 按小写券码查询所有年份的券，按年份倒序
	FindByCode(ctx context.Context, code string) ([]domain.Coupon, error)
	// CountRedemptions 统计某张券的已兑换次数，兑换次数不落库，永远从记录数推导
	CountRedemptions(ctx context.Context, couponID int64) (int64, error)
	// CreateRedemption 在单券行锁下校验上限并插入兑换记录
	CreateRedemption(ctx context.Context, redemption domain.CouponRedemption) (domain.CouponRedemption, error)
	// FindActiveExpired 分页查询年份已过且仍启用的券
	FindActiveExpired(ctx context.Context, beforeYear int, offset, limit int) ([]domain.Coupon, error)
	// Deactivate 停用一张券并让缓存失效
	Deactivate(ctx context.Context, coupon domain.Coupon) error
}

type couponRepository struct {
	dao        dao.CouponDAO
	localCache cache.CouponCache
	redisCache cache.CouponCache
	logger     *elog.Component
}

func NewCouponRepository(couponDAO dao.CouponDAO, localCache, redisCache cache.CouponCache) CouponRepository {
	return &couponRepository{
		dao:        couponDAO,
		localCache: localCache,
		redisCache: redisCache,
		logger:     elog.DefaultLogger,
	}
}

// FindByCode 先查本地缓存，再查 redis，最后回源数据库
func (r *couponRepository) FindByCode(ctx context.Context, code string) ([]domain.Coupon, error) {
	coupons, err := r.localCache.Get(ctx, code)
	if err == nil {
		return coupons, nil
	}
	coupons, err = r.redisCache.Get(ctx, code)
	if err == nil {
		if lerr := r.localCache.Set(ctx, code, coupons); lerr != nil {
			r.logger.Warn("回填本地缓存失败", elog.FieldErr(lerr))
		}
		return coupons, nil
	}
	if !errors.Is(err, cache.ErrKeyNotFound) {
		r.logger.Warn("查询优惠券缓存失败", elog.String("code", code), elog.FieldErr(err))
	}

	entities, err := r.dao.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	coupons = slice.Map(entities, func(_ int, c dao.Coupon) domain.Coupon {
		return r.toDomain(c)
	})
	if len(coupons) > 0 {
		if cerr := r.redisCache.Set(ctx, code, coupons); cerr != nil {
			r.logger.Warn("回填 redis 缓存失败", elog.String("code", code), elog.FieldErr(cerr))
		}
		if cerr := r.localCache.Set(ctx, code, coupons); cerr != nil {
			r.logger.Warn("回填本地缓存失败", elog.String("code", code), elog.FieldErr(cerr))
		}
	}
	return coupons, nil
}

func (r *couponRepository) CountRedemptions(ctx context.Context, couponID int64) (int64, error) {
	return r.dao.CountRedemptions(ctx, couponID)
}

func (r *couponRepository) CreateRedemption(ctx context.Context, redemption domain.CouponRedemption) (domain.CouponRedemption, error) {
	created, err := r.dao.CreateRedemption(ctx, dao.CouponRedemption{
		CouponID:       redemption.CouponID,
		RegistrationID: redemption.RegistrationID,
		RedeemedAt:     redemption.RedeemedAt.UnixMilli(),
	})
	if err != nil {
		return domain.CouponRedemption{}, err
	}
	redemption.ID = created.ID
	redemption.RedeemedAt = time.UnixMilli(created.RedeemedAt)
	return redemption, nil
}

func (r *couponRepository) FindActiveExpired(ctx context.Context, beforeYear int, offset, limit int) ([]domain.Coupon, error) {
	entities, err := r.dao.FindActiveExpired(ctx, beforeYear, offset, limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, func(_ int, c dao.Coupon) domain.Coupon {
		return r.toDomain(c)
	}), nil
}

func (r *couponRepository) Deactivate(ctx context.Context, coupon domain.Coupon) error {
	if err := r.dao.Deactivate(ctx, coupon.ID); err != nil {
		return err
	}
	// 删 redis 键，本地缓存靠 keyspace 通知跟着失效
	if err := r.redisCache.Del(ctx, coupon.Code); err != nil {
		r.logger.Warn("删除优惠券缓存失败", elog.String("code", coupon.Code), elog.FieldErr(err))
	}
	return nil
}

func (r *couponRepository) toDomain(c dao.Coupon) domain.Coupon {
	return domain.Coupon{
		ID:             c.ID,
		Code:           c.Code,
		Year:           c.Year,
		DiscountType:   domain.DiscountType(c.DiscountType),
		DiscountAmount: c.DiscountAmount,
		MaxRedemptions: c.MaxRedemptions,
		Active:         c.Active,
	}
}
