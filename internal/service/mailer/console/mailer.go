package console

import (
	"context"

	"gitee.com/flycash/event-registration-platform/internal/service/mailer"
	"github.com/gotomicro/ego/core/elog"
)

// 输出到控制台的实现，本地开发和演示用

type Mailer struct {
	logger *elog.Component
}

func NewMailer() *Mailer {
	return &Mailer{
		logger: elog.DefaultLogger,
	}
}

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	m.logger.Info("发送邮件", elog.Any("message", msg))
	return nil
}
