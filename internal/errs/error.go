package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter = errors.New("参数错误")

	ErrInvalidStepConfig  = errors.New("邮件链步骤配置错误")
	ErrSendEmailFailed    = errors.New("发送邮件失败")
	ErrSendRecordConflict = errors.New("发送记录已存在")

	ErrCouponNotFound     = errors.New("优惠券不存在")
	ErrCouponLimitReached = errors.New("优惠券已达兑换上限")
	ErrRedemptionConflict = errors.New("该报名已经兑换过优惠券")

	ErrEventNotFound        = errors.New("活动不存在")
	ErrRegistrationNotFound = errors.New("报名记录不存在")
)
