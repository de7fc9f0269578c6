package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/errs"
	"gitee.com/flycash/event-registration-platform/internal/repository"
	couponsvc "gitee.com/flycash/event-registration-platform/internal/service/coupon"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
)

// Service 报名入口
// 创建时是 PENDING，支付回调确认之后才会进入邮件链调度
type Service interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	// Confirm 支付确认，重复调用是幂等的
	Confirm(ctx context.Context, id int64) (domain.Registration, error)
	Cancel(ctx context.Context, id int64) error
}

type service struct {
	repo      repository.RegistrationRepository
	eventRepo repository.EventRepository
	couponSvc couponsvc.Service
	idGen     *sonyflake.Sonyflake
	logger    *elog.Component
}

func NewService(
	repo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	couponSvc couponsvc.Service,
	idGen *sonyflake.Sonyflake,
) Service {
	return &service{
		repo:      repo,
		eventRepo: eventRepo,
		couponSvc: couponSvc,
		idGen:     idGen,
		logger:    elog.DefaultLogger,
	}
}

func (s *service) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	if err := reg.Validate(); err != nil {
		return domain.Registration{}, err
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return domain.Registration{}, err
	}
	if !event.Active {
		return domain.Registration{}, fmt.Errorf("%w: 活动未启用", errs.ErrInvalidParameter)
	}

	// 填了券码就先做一次预校验，不可用的券直接拒绝报名
	if reg.CouponCode != "" {
		res, verr := s.couponSvc.Validate(ctx, reg.CouponCode, event)
		if verr != nil {
			return domain.Registration{}, verr
		}
		if !res.IsValid() {
			return domain.Registration{}, fmt.Errorf("%w: 优惠券不可用 %s", errs.ErrInvalidParameter, res.Outcome)
		}
	}

	id, err := s.idGen.NextID()
	if err != nil {
		return domain.Registration{}, fmt.Errorf("生成报名ID失败: %w", err)
	}
	reg.ID = int64(id)
	reg.Status = domain.RegistrationStatusPending
	reg.RegisteredAt = time.Now()
	return s.repo.Create(ctx, reg)
}

func (s *service) Confirm(ctx context.Context, id int64) (domain.Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, err
	}
	switch reg.Status {
	case domain.RegistrationStatusConfirmed:
		return reg, nil
	case domain.RegistrationStatusCancelled:
		return domain.Registration{}, fmt.Errorf("%w: 报名已取消", errs.ErrInvalidParameter)
	case domain.RegistrationStatusPending:
	}

	if err = s.repo.UpdateStatus(ctx, id, domain.RegistrationStatusConfirmed); err != nil {
		return domain.Registration{}, err
	}
	reg.Status = domain.RegistrationStatusConfirmed

	if reg.CouponCode != "" {
		s.redeemCoupon(ctx, reg)
	}
	return reg, nil
}

// redeemCoupon 支付已经完成，兑换失败只记日志不回滚确认
func (s *service) redeemCoupon(ctx context.Context, reg domain.Registration) {
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		s.logger.Error("兑换优惠券时查询活动失败",
			elog.Int64("registrationID", reg.ID),
			elog.FieldErr(err))
		return
	}
	res, err := s.couponSvc.Validate(ctx, reg.CouponCode, event)
	if err != nil || !res.IsValid() {
		s.logger.Warn("确认时优惠券已不可用",
			elog.Int64("registrationID", reg.ID),
			elog.String("code", reg.CouponCode),
			elog.Any("outcome", res.Outcome),
			elog.FieldErr(err))
		return
	}
	_, err = s.couponSvc.RecordRedemption(ctx, res.CouponID, reg.ID)
	if err != nil && !errors.Is(err, errs.ErrRedemptionConflict) {
		s.logger.Warn("记录优惠券兑换失败",
			elog.Int64("registrationID", reg.ID),
			elog.Int64("couponID", res.CouponID),
			elog.FieldErr(err))
	}
}

func (s *service) Cancel(ctx context.Context, id int64) error {
	return s.repo.UpdateStatus(ctx, id, domain.RegistrationStatusCancelled)
}
