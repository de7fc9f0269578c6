package mailer

import (
	"context"
)

// Message 一封待发送的邮件
type Message struct {
	To         string            // 收件人邮箱
	ToName     string            // 收件人姓名
	TemplateID int64             // 邮件模板ID
	Subject    string            // 邮件主题
	Params     map[string]string // 渲染模版时使用的参数
}

// Mailer 外部邮件发送能力的抽象
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
