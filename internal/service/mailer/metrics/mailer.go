// Package metrics 为邮件发送实现添加指标收集的装饰器
package metrics

import (
	"context"
	"strconv"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/service/mailer"
	"github.com/prometheus/client_golang/prometheus"
)

// Mailer 为邮件发送实现添加指标收集的装饰器
type Mailer struct {
	mailer              mailer.Mailer
	sendDurationSummary *prometheus.SummaryVec
	sendCounter         *prometheus.CounterVec
	sendStatusCounter   *prometheus.CounterVec
	name                string
}

// NewMailer 创建一个新的带有指标收集的邮件发送器
func NewMailer(name string, m mailer.Mailer) *Mailer {
	sendDurationSummary := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "mailer_send_duration_seconds",
			Help:       "邮件发送耗时统计（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"mailer", "template", "status"},
	)

	sendCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailer_send_total",
			Help: "邮件发送总数",
		},
		[]string{"mailer", "template"},
	)

	sendStatusCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailer_send_status_total",
			Help: "邮件发送状态统计",
		},
		[]string{"mailer", "template", "status"},
	)

	// 注册指标
	prometheus.MustRegister(sendDurationSummary, sendCounter, sendStatusCounter)

	return &Mailer{
		mailer:              m,
		sendDurationSummary: sendDurationSummary,
		sendCounter:         sendCounter,
		sendStatusCounter:   sendStatusCounter,
		name:                name,
	}
}

// Send 发送邮件并记录指标
func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	startTime := time.Now()
	template := strconv.FormatInt(msg.TemplateID, 10)

	m.sendCounter.WithLabelValues(m.name, template).Inc()

	err := m.mailer.Send(ctx, msg)

	status := "success"
	if err != nil {
		status = "failure"
	}
	m.sendStatusCounter.WithLabelValues(m.name, template, status).Inc()
	m.sendDurationSummary.WithLabelValues(m.name, template, status).
		Observe(time.Since(startTime).Seconds())

	return err
}
