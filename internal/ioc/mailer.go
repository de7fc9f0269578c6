package ioc

import (
	"gitee.com/flycash/event-registration-platform/internal/service/mailer"
	"gitee.com/flycash/event-registration-platform/internal/service/mailer/console"
	"gitee.com/flycash/event-registration-platform/internal/service/mailer/metrics"
)

// InitMailer console 实现加指标装饰器
// 接真实邮件服务商的时候只换掉里面这一层
func InitMailer() mailer.Mailer {
	return metrics.NewMailer("console", console.NewMailer())
}
