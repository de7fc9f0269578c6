package scheduler

import (
	"context"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/pkg/loopjob"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

const tickLockKey = "email_chain_tick"

// TickJob 周期性触发 ChainScheduler.Tick 的任务
// 分布式锁保证整个集群里同一时刻最多只有一轮 Tick 在跑
type TickJob struct {
	svc    ChainScheduler
	job    *loopjob.IntervalJob
	logger *elog.Component
}

func NewTickJob(svc ChainScheduler, dclient dlock.Client, interval time.Duration) *TickJob {
	t := &TickJob{
		svc:    svc,
		logger: elog.DefaultLogger,
	}
	t.job = loopjob.NewIntervalJob(dclient, t.do, tickLockKey, interval)
	return t
}

func (t *TickJob) Start(ctx context.Context) {
	go t.job.Run(ctx)
}

func (t *TickJob) do(ctx context.Context) error {
	res, err := t.svc.Tick(ctx, time.Now())
	if err != nil {
		return err
	}
	t.logger.Info("邮件链调度完成",
		elog.Int("sent", res.Sent),
		elog.Int("skipped", res.Skipped),
		elog.Int("failed", res.Failed))
	return nil
}
