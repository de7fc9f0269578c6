package domain

import (
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/errs"
)

// RegistrationStatus 报名状态
type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "PENDING"   // 已创建未支付
	RegistrationStatusConfirmed RegistrationStatus = "CONFIRMED" // 支付确认
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED" // 已取消
)

func (s RegistrationStatus) String() string {
	return string(s)
}

// Registration 报名记录
// 只有 CONFIRMED 状态的报名会进入邮件链调度
type Registration struct {
	ID           int64
	EventID      int64
	Name         string
	Email        string
	Status       RegistrationStatus
	CouponCode   string // 下单时填写的优惠券码，可以为空
	RegisteredAt time.Time
}

func (r Registration) Eligible() bool {
	return r.Status == RegistrationStatusConfirmed
}

func (r *Registration) Validate() error {
	if r.EventID <= 0 {
		return fmt.Errorf("%w: EventID = %d", errs.ErrInvalidParameter, r.EventID)
	}
	if r.Email == "" {
		return fmt.Errorf("%w: Email 为空", errs.ErrInvalidParameter)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: Name 为空", errs.ErrInvalidParameter)
	}
	return nil
}

// Event 活动
type Event struct {
	ID        int64
	Slug      string
	Name      string
	StartsAt  time.Time
	Year      int   // 活动年份，优惠券按这个字段作用域
	BasePrice int64 // 原价，单位分
	Active    bool
}
