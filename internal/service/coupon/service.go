package coupon

import (
	"context"
	"strings"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/repository"
)

// Service 优惠券校验与兑换
type Service interface {
	// Validate 校验一个券码能否用在某个活动上，只读，无副作用
	Validate(ctx context.Context, code string, event domain.Event) (domain.ValidationResult, error)
	// RecordRedemption 记录一次成功兑换
	// 超过上限返回 errs.ErrCouponLimitReached，重复兑换返回 errs.ErrRedemptionConflict
	RecordRedemption(ctx context.Context, couponID, registrationID int64) (domain.CouponRedemption, error)
}

type service struct {
	repo repository.CouponRepository
}

func NewService(repo repository.CouponRepository) Service {
	return &service{
		repo: repo,
	}
}

// Validate 校验顺序：存在性、启用状态、年份、兑换上限
// 券码大小写不敏感，同一个码在不同年份可能各有一张，优先取活动年份的那张
func (s *service) Validate(ctx context.Context, code string, event domain.Event) (domain.ValidationResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return domain.ValidationResult{Outcome: domain.OutcomeNotFound}, nil
	}

	coupons, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if len(coupons) == 0 {
		return domain.ValidationResult{Outcome: domain.OutcomeNotFound}, nil
	}

	coupon := coupons[0]
	for _, c := range coupons {
		if c.Year == event.Year {
			coupon = c
			break
		}
	}

	if !coupon.Active {
		return domain.ValidationResult{Outcome: domain.OutcomeInactive}, nil
	}
	if coupon.Year != event.Year {
		return domain.ValidationResult{Outcome: domain.OutcomeWrongYear}, nil
	}
	if coupon.MaxRedemptions > 0 {
		cnt, err := s.repo.CountRedemptions(ctx, coupon.ID)
		if err != nil {
			return domain.ValidationResult{}, err
		}
		if cnt >= coupon.MaxRedemptions {
			return domain.ValidationResult{Outcome: domain.OutcomeLimitReached}, nil
		}
	}

	return domain.ValidationResult{
		Outcome:  domain.OutcomeValid,
		Discount: coupon.Discount(event.BasePrice),
		CouponID: coupon.ID,
	}, nil
}

func (s *service) RecordRedemption(ctx context.Context, couponID, registrationID int64) (domain.CouponRedemption, error) {
	return s.repo.CreateRedemption(ctx, domain.CouponRedemption{
		CouponID:       couponID,
		RegistrationID: registrationID,
		RedeemedAt:     time.Now(),
	})
}
