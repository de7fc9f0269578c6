package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/errs"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CouponDAO interface {
	// FindByCode 按小写后的券码查询，同一个码在不同年份可能各有一张，按年份倒序
	FindByCode(ctx context.Context, code string) ([]Coupon, error)
	// CountRedemptions 统计某张券已有的兑换次数
	CountRedemptions(ctx context.Context, couponID int64) (int64, error)
	// CreateRedemption 在行锁保护下校验兑换上限并插入兑换记录
	// 超过上限返回 ErrCouponLimitReached，同一报名重复兑换返回 ErrRedemptionConflict
	CreateRedemption(ctx context.Context, redemption CouponRedemption) (CouponRedemption, error)
	// FindActiveExpired 分页查询年份已过期但仍处于启用状态的券
	FindActiveExpired(ctx context.Context, beforeYear int, offset, limit int) ([]Coupon, error)
	// Deactivate 停用一张券
	Deactivate(ctx context.Context, couponID int64) error
}

// Coupon 优惠券表，code 统一小写存储，(code, year) 唯一
type Coupon struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Code           string `gorm:"type:VARCHAR(64);NOT NULL;uniqueIndex:idx_code_year,priority:1;comment:'券码，小写存储'"`
	Year           int    `gorm:"type:INT;NOT NULL;uniqueIndex:idx_code_year,priority:2;index:idx_year_active,priority:1;comment:'归属年份'"`
	DiscountType   string `gorm:"type:ENUM('FLAT','FREE');NOT NULL;comment:'优惠规则'"`
	DiscountAmount int64  `gorm:"type:BIGINT;NOT NULL;DEFAULT:0;comment:'固定减免金额，单位分'"`
	MaxRedemptions int64  `gorm:"type:BIGINT;NOT NULL;DEFAULT:0;comment:'最大兑换次数，0表示不限'"`
	Active         bool   `gorm:"NOT NULL;DEFAULT:1;index:idx_year_active,priority:2;comment:'是否启用'"`
	Ctime          int64
	Utime          int64
}

func (Coupon) TableName() string {
	return "coupons"
}

// CouponRedemption 兑换记录表，registration_id 唯一保证一个报名只能用一张券
type CouponRedemption struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	CouponID       int64 `gorm:"type:BIGINT;NOT NULL;index:idx_coupon_id;comment:'优惠券ID'"`
	RegistrationID int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_registration_id;comment:'报名ID'"`
	RedeemedAt     int64 `gorm:"NOT NULL;comment:'兑换时间，毫秒时间戳'"`
	Ctime          int64
}

func (CouponRedemption) TableName() string {
	return "coupon_redemptions"
}

type couponDAO struct {
	db *egorm.Component
}

func NewCouponDAO(db *egorm.Component) CouponDAO {
	return &couponDAO{db: db}
}

func (d *couponDAO) FindByCode(ctx context.Context, code string) ([]Coupon, error) {
	var coupons []Coupon
	err := d.db.WithContext(ctx).
		Where("code = ?", code).
		Order("year DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("查询优惠券失败: %w", err)
	}
	return coupons, nil
}

func (d *couponDAO) CountRedemptions(ctx context.Context, couponID int64) (int64, error) {
	var cnt int64
	err := d.db.WithContext(ctx).
		Model(&CouponRedemption{}).
		Where("coupon_id = ?", couponID).
		Count(&cnt).Error
	if err != nil {
		return 0, fmt.Errorf("统计兑换次数失败: %w", err)
	}
	return cnt, nil
}

// CreateRedemption 先锁住券的行，再数已有兑换，最后插入
// 锁的粒度是单张券，不同券之间的兑换互不影响
func (d *couponDAO) CreateRedemption(ctx context.Context, redemption CouponRedemption) (CouponRedemption, error) {
	now := time.Now().UnixMilli()
	redemption.Ctime = now
	if redemption.RedeemedAt == 0 {
		redemption.RedeemedAt = now
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon Coupon
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&coupon, "id = ?", redemption.CouponID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w", errs.ErrCouponNotFound)
			}
			return err
		}
		if coupon.MaxRedemptions > 0 {
			var cnt int64
			err = tx.Model(&CouponRedemption{}).
				Where("coupon_id = ?", redemption.CouponID).
				Count(&cnt).Error
			if err != nil {
				return err
			}
			if cnt >= coupon.MaxRedemptions {
				return fmt.Errorf("%w", errs.ErrCouponLimitReached)
			}
		}
		if err = tx.Create(&redemption).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w", errs.ErrRedemptionConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return CouponRedemption{}, err
	}
	return redemption, nil
}

func (d *couponDAO) FindActiveExpired(ctx context.Context, beforeYear int, offset, limit int) ([]Coupon, error) {
	var coupons []Coupon
	err := d.db.WithContext(ctx).
		Where("year < ? AND active = ?", beforeYear, true).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("查询过期优惠券失败: %w", err)
	}
	return coupons, nil
}

func (d *couponDAO) Deactivate(ctx context.Context, couponID int64) error {
	return d.db.WithContext(ctx).
		Model(&Coupon{}).
		Where("id = ?", couponID).
		Updates(map[string]any{
			"active": false,
			"utime":  time.Now().UnixMilli(),
		}).Error
}
