package loopjob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

// 在没有分布式任务调度平台的情况下，使用这个来做定时调度

const defaultTimeout = time.Second * 3

// IntervalJob 在分布式锁的保护下按固定间隔执行业务
// 锁保证任意时刻全局最多只有一个实例在执行，同一轮业务内部可以自己并发
type IntervalJob struct {
	dclient  dlock.Client
	key      string
	interval time.Duration
	logger   *elog.Component
	biz      func(ctx context.Context) error
}

func NewIntervalJob(
	dclient dlock.Client,
	// 你要执行的业务。注意当 ctx 被取消的时候，就会退出全部循环
	biz func(ctx context.Context) error,
	key string,
	interval time.Duration,
) *IntervalJob {
	return &IntervalJob{
		dclient:  dclient,
		key:      key,
		interval: interval,
		logger:   elog.DefaultLogger.With(elog.String("key", key)),
		biz:      biz,
	}
}

// Run 当 ctx 被取消的时候，就会退出
func (j *IntervalJob) Run(ctx context.Context) {
	// 锁的有效期要盖过一个完整的执行间隔
	expiration := j.interval + time.Minute
	for {
		lock, err := j.dclient.NewLock(ctx, j.key, expiration)
		if err != nil {
			j.logger.Error("初始化分布式锁失败，重试",
				elog.Any("err", err))
			time.Sleep(j.interval)
			continue
		}

		lockCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		// 没有拿到锁，不管是系统错误，还是锁被别的实例持有，都没有关系
		// 暂停一段时间之后继续抢
		err = lock.Lock(lockCtx)
		cancel()
		if err != nil {
			j.logger.Warn("没有抢到分布式锁", elog.Any("err", err))
			time.Sleep(j.interval)
			continue
		}

		err = j.bizLoop(ctx, lock)
		// 要么是续约失败，要么是 ctx 本身已经过期了
		if err != nil {
			j.logger.Error("执行业务失败，将执行重试", elog.FieldErr(err))
		}
		// 不管是什么原因，都要考虑释放分布式锁了
		// 要稍微摆脱 ctx 的控制，因为此时 ctx 可能被取消了
		unCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		//nolint:contextcheck // 这里必须使用 Background Context，因为原始 ctx 可能已被取消，但仍需尝试解锁操作。
		unErr := lock.Unlock(unCtx)
		cancel()
		if unErr != nil {
			j.logger.Error("释放分布式锁失败", elog.Any("err", unErr))
		}
		err = ctx.Err()
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			j.logger.Info("任务被取消，退出任务循环")
			return
		default:
			time.Sleep(j.interval)
		}
	}
}

// bizLoop 持有锁期间按间隔跑业务，每一轮之后续约
func (j *IntervalJob) bizLoop(ctx context.Context, lock dlock.Lock) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		err := j.biz(ctx)
		if err != nil {
			j.logger.Error("业务执行失败", elog.FieldErr(err))
		}
		refCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		err = lock.Refresh(refCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("分布式锁续约失败 %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
