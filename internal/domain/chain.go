package domain

import (
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/errs"
)

// Anchor 邮件链步骤的时间锚点
type Anchor string

const (
	// AnchorAfterRegistration 报名完成之后多少分钟发送
	AnchorAfterRegistration Anchor = "AFTER_REGISTRATION"
	// AnchorBeforeEvent 活动开始之前多少分钟发送
	AnchorBeforeEvent Anchor = "BEFORE_EVENT"
)

func (a Anchor) String() string {
	return string(a)
}

// EmailChain 邮件链，挂在一个活动下面的一组有序步骤
type EmailChain struct {
	ID      int64
	EventID int64  // 所属活动
	Name    string // 邮件链名称
	Active  bool
}

// EmailChainStep 邮件链中的一个步骤：一个邮件模板加一条时间规则
type EmailChainStep struct {
	ID            int64
	ChainID       int64  // 所属邮件链
	TemplateID    int64  // 邮件模板，对本核心来说是不透明的引用
	Subject       string // 邮件主题
	OffsetMinutes int64  // 相对锚点的偏移量，单位分钟，必须非负
	Anchor        Anchor
	Active        bool
}

// TargetFireTime 计算该步骤针对某个报名的目标发送时间
// AfterRegistration 是报名时间加偏移，BeforeEvent 是活动开始时间减偏移
func (s EmailChainStep) TargetFireTime(registeredAt, eventStartsAt time.Time) (time.Time, error) {
	if s.OffsetMinutes < 0 {
		return time.Time{}, fmt.Errorf("%w: 偏移量为负数 %d", errs.ErrInvalidStepConfig, s.OffsetMinutes)
	}
	offset := time.Duration(s.OffsetMinutes) * time.Minute
	switch s.Anchor {
	case AnchorAfterRegistration:
		return registeredAt.Add(offset), nil
	case AnchorBeforeEvent:
		return eventStartsAt.Add(-offset), nil
	default:
		return time.Time{}, fmt.Errorf("%w: 未知锚点 %q", errs.ErrInvalidStepConfig, s.Anchor)
	}
}

// ScheduledStep 调度视角下的步骤，带上了所属活动的信息
type ScheduledStep struct {
	Step          EmailChainStep
	EventID       int64
	EventStartsAt time.Time
}

// SendRecord 发送记录，同一 (步骤, 报名) 只会有一条，作为去重依据
type SendRecord struct {
	ID             int64
	StepID         int64
	RegistrationID int64
	SentAt         time.Time
}

// TickResult 一轮调度的统计结果
type TickResult struct {
	Sent    int // 本轮成功发送数
	Skipped int // 已有发送记录而跳过数
	Failed  int // 发送失败或配置错误数
}
