package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/errs"
	"gitee.com/flycash/event-registration-platform/internal/repository"
	"gitee.com/flycash/event-registration-platform/internal/service/mailer"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 16

// ChainScheduler 邮件链调度器
// 每一轮 Tick 扫描所有启用状态的步骤，找出到期且未发送过的 (步骤, 报名) 组合并逐个发送
type ChainScheduler interface {
	Tick(ctx context.Context, now time.Time) (domain.TickResult, error)
}

type chainScheduler struct {
	chainRepo   repository.ChainRepository
	regRepo     repository.RegistrationRepository
	mailer      mailer.Mailer
	concurrency int
	logger      *elog.Component
}

func NewChainScheduler(
	chainRepo repository.ChainRepository,
	regRepo repository.RegistrationRepository,
	m mailer.Mailer,
) ChainScheduler {
	return &chainScheduler{
		chainRepo:   chainRepo,
		regRepo:     regRepo,
		mailer:      m,
		concurrency: defaultConcurrency,
		logger:      elog.DefaultLogger,
	}
}

// Tick 执行一轮调度
// 读不到步骤或报名数据时整轮失败，交给下一轮重试
// 单个组合的发送失败只计数不中断，失败的组合没有发送记录，下一轮会重新到期
func (s *chainScheduler) Tick(ctx context.Context, now time.Time) (domain.TickResult, error) {
	steps, err := s.chainRepo.FindActiveSteps(ctx)
	if err != nil {
		return domain.TickResult{}, fmt.Errorf("读取邮件链步骤失败: %w", err)
	}

	// 偏移小的步骤先处理，同一报名在一轮里先收到序列靠前的邮件
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Step.OffsetMinutes < steps[j].Step.OffsetMinutes
	})

	var sent, skipped, failed int64
	regsByEvent := make(map[int64][]domain.Registration)

	for i := range steps {
		st := steps[i]

		regs, ok := regsByEvent[st.EventID]
		if !ok {
			regs, err = s.regRepo.FindConfirmedByEvent(ctx, st.EventID)
			if err != nil {
				return s.result(&sent, &skipped, &failed), fmt.Errorf("读取报名数据失败: %w", err)
			}
			regsByEvent[st.EventID] = regs
		}

		sentSet, err := s.chainRepo.FindSentRegistrationIDs(ctx, st.Step.ID)
		if err != nil {
			return s.result(&sent, &skipped, &failed), fmt.Errorf("读取发送记录失败: %w", err)
		}

		due := make([]domain.Registration, 0, len(regs))
		stepBroken := false
		for _, reg := range regs {
			if !reg.Eligible() {
				continue
			}
			if _, already := sentSet[reg.ID]; already {
				atomic.AddInt64(&skipped, 1)
				continue
			}
			target, terr := st.Step.TargetFireTime(reg.RegisteredAt, st.EventStartsAt)
			if terr != nil {
				// 配置坏掉的步骤整个跳过，只记一次
				s.logger.Error("步骤配置错误，跳过",
					elog.Int64("stepID", st.Step.ID),
					elog.FieldErr(terr))
				atomic.AddInt64(&failed, 1)
				stepBroken = true
				break
			}
			if target.After(now) {
				continue
			}
			due = append(due, reg)
		}
		if stepBroken {
			continue
		}

		var eg errgroup.Group
		eg.SetLimit(s.concurrency)
		for _, reg := range due {
			eg.Go(func() error {
				s.sendOne(ctx, st, reg, now, &sent, &skipped, &failed)
				return nil
			})
		}
		_ = eg.Wait()
	}

	return s.result(&sent, &skipped, &failed), nil
}

// sendOne 发送一个到期组合并落发送记录，发送记录是唯一的提交点
func (s *chainScheduler) sendOne(
	ctx context.Context,
	st domain.ScheduledStep,
	reg domain.Registration,
	now time.Time,
	sent, skipped, failed *int64,
) {
	msg := mailer.Message{
		To:         reg.Email,
		ToName:     reg.Name,
		TemplateID: st.Step.TemplateID,
		Subject:    st.Step.Subject,
		Params: map[string]string{
			"name":     reg.Name,
			"event_id": strconv.FormatInt(st.EventID, 10),
		},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// 不落发送记录，该组合保持到期状态，下一轮重试
		s.logger.Error("发送邮件失败",
			elog.Int64("stepID", st.Step.ID),
			elog.Int64("registrationID", reg.ID),
			elog.FieldErr(fmt.Errorf("%w: %w", errs.ErrSendEmailFailed, err)))
		atomic.AddInt64(failed, 1)
		return
	}

	_, err := s.chainRepo.CreateSendRecord(ctx, domain.SendRecord{
		StepID:         st.Step.ID,
		RegistrationID: reg.ID,
		SentAt:         now,
	})
	switch {
	case err == nil:
		atomic.AddInt64(sent, 1)
	case errors.Is(err, errs.ErrSendRecordConflict):
		// 并发下别人已经写入记录，视为已覆盖
		atomic.AddInt64(skipped, 1)
	default:
		// 邮件已发出但记录失败，下一轮可能重发，记日志便于排查
		s.logger.Warn("发送记录写入失败",
			elog.Int64("stepID", st.Step.ID),
			elog.Int64("registrationID", reg.ID),
			elog.FieldErr(err))
		atomic.AddInt64(failed, 1)
	}
}

func (s *chainScheduler) result(sent, skipped, failed *int64) domain.TickResult {
	return domain.TickResult{
		Sent:    int(atomic.LoadInt64(sent)),
		Skipped: int(atomic.LoadInt64(skipped)),
		Failed:  int(atomic.LoadInt64(failed)),
	}
}
