package domain

import (
	"time"
)

// DiscountType 优惠规则类型
type DiscountType string

const (
	// DiscountTypeFlat 固定金额减免
	DiscountTypeFlat DiscountType = "FLAT"
	// DiscountTypeFree 免费，把价格直接减到零
	DiscountTypeFree DiscountType = "FREE"
)

func (d DiscountType) String() string {
	return string(d)
}

// Coupon 优惠券
// Code 在同一年份内大小写不敏感唯一，存储时统一转成小写
type Coupon struct {
	ID             int64
	Code           string
	Year           int          // 归属年份
	DiscountType   DiscountType // 优惠规则
	DiscountAmount int64        // 固定减免金额，单位分，FREE 规则下忽略
	MaxRedemptions int64        // 最大兑换次数，0 表示不限
	Active         bool
}

// Discount 按优惠规则计算减免金额，结果不会超过原价
func (c Coupon) Discount(basePrice int64) int64 {
	switch c.DiscountType {
	case DiscountTypeFree:
		return basePrice
	case DiscountTypeFlat:
		if c.DiscountAmount > basePrice {
			return basePrice
		}
		return c.DiscountAmount
	default:
		return 0
	}
}

// CouponRedemption 一次成功的优惠券兑换，只增不改
type CouponRedemption struct {
	ID             int64
	CouponID       int64
	RegistrationID int64
	RedeemedAt     time.Time
}

// ValidationOutcome 校验结果，互斥
type ValidationOutcome string

const (
	OutcomeNotFound     ValidationOutcome = "NOT_FOUND"     // 优惠券不存在
	OutcomeInactive     ValidationOutcome = "INACTIVE"      // 已停用
	OutcomeWrongYear    ValidationOutcome = "WRONG_YEAR"    // 年份不匹配
	OutcomeLimitReached ValidationOutcome = "LIMIT_REACHED" // 已达兑换上限
	OutcomeValid        ValidationOutcome = "VALID"         // 可用
)

// ValidationResult 校验结果加上计算出来的减免金额
type ValidationResult struct {
	Outcome  ValidationOutcome
	Discount int64 // 减免金额，单位分，仅 VALID 时有意义
	CouponID int64 // 命中的优惠券，仅 VALID 时有意义
}

func (r ValidationResult) IsValid() bool {
	return r.Outcome == OutcomeValid
}
