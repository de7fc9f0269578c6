package repository

import (
	"context"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

type ChainRepository interface {
	// FindActiveSteps 查询所有可调度的步骤，邮件链和活动均处于启用状态
	FindActiveSteps(ctx context.Context) ([]domain.ScheduledStep, error)
	// FindSentRegistrationIDs 查询某步骤已发送过的报名ID集合
	FindSentRegistrationIDs(ctx context.Context, stepID int64) (map[int64]struct{}, error)
	// CreateSendRecord 记录一次成功发送，重复记录返回 errs.ErrSendRecordConflict
	CreateSendRecord(ctx context.Context, record domain.SendRecord) (domain.SendRecord, error)
}

type chainRepository struct {
	dao dao.ChainDAO
}

func NewChainRepository(chainDAO dao.ChainDAO) ChainRepository {
	return &chainRepository{
		dao: chainDAO,
	}
}

func (r *chainRepository) FindActiveSteps(ctx context.Context) ([]domain.ScheduledStep, error) {
	rows, err := r.dao.FindActiveSteps(ctx)
	if err != nil {
		return nil, err
	}
	return slice.Map(rows, func(_ int, row dao.ActiveStepRow) domain.ScheduledStep {
		return domain.ScheduledStep{
			Step: domain.EmailChainStep{
				ID:            row.ID,
				ChainID:       row.ChainID,
				TemplateID:    row.TemplateID,
				Subject:       row.Subject,
				OffsetMinutes: row.OffsetMinutes,
				Anchor:        domain.Anchor(row.Anchor),
				Active:        true,
			},
			EventID:       row.EventID,
			EventStartsAt: time.UnixMilli(row.EventStartsAt),
		}
	}), nil
}

func (r *chainRepository) FindSentRegistrationIDs(ctx context.Context, stepID int64) (map[int64]struct{}, error) {
	ids, err := r.dao.FindSentRegistrationIDs(ctx, stepID)
	if err != nil {
		return nil, err
	}
	sent := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		sent[id] = struct{}{}
	}
	return sent, nil
}

func (r *chainRepository) CreateSendRecord(ctx context.Context, record domain.SendRecord) (domain.SendRecord, error) {
	created, err := r.dao.CreateSendRecord(ctx, dao.SendRecord{
		StepID:         record.StepID,
		RegistrationID: record.RegistrationID,
		SentAt:         record.SentAt.UnixMilli(),
	})
	if err != nil {
		return domain.SendRecord{}, err
	}
	record.ID = created.ID
	return record, nil
}
