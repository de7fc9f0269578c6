package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/errs"
	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
)

type ChainDAO interface {
	// FindActiveSteps 查询所有可调度的步骤：步骤、邮件链、活动三者都处于启用状态
	FindActiveSteps(ctx context.Context) ([]ActiveStepRow, error)
	// FindSentRegistrationIDs 查询某个步骤已经发送过的报名ID集合
	FindSentRegistrationIDs(ctx context.Context, stepID int64) ([]int64, error)
	// CreateSendRecord 创建发送记录，(step_id, registration_id) 唯一索引冲突时返回 ErrSendRecordConflict
	CreateSendRecord(ctx context.Context, record SendRecord) (SendRecord, error)
}

// EmailChain 邮件链表
type EmailChain struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	EventID int64  `gorm:"type:BIGINT;NOT NULL;index:idx_event_id;comment:'所属活动ID'"`
	Name    string `gorm:"type:VARCHAR(256);NOT NULL;comment:'邮件链名称'"`
	Active  bool   `gorm:"NOT NULL;DEFAULT:1;comment:'是否启用'"`
	Ctime   int64
	Utime   int64
}

func (EmailChain) TableName() string {
	return "email_chains"
}

// EmailChainStep 邮件链步骤表
type EmailChainStep struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	ChainID       int64  `gorm:"type:BIGINT;NOT NULL;index:idx_chain_id;comment:'所属邮件链ID，邮件链删除时级联删除'"`
	TemplateID    int64  `gorm:"type:BIGINT;NOT NULL;comment:'邮件模板ID'"`
	Subject       string `gorm:"type:VARCHAR(512);NOT NULL;comment:'邮件主题'"`
	OffsetMinutes int64  `gorm:"type:BIGINT;NOT NULL;comment:'相对锚点的偏移分钟数'"`
	Anchor        string `gorm:"type:ENUM('AFTER_REGISTRATION','BEFORE_EVENT');NOT NULL;comment:'时间锚点'"`
	Active        bool   `gorm:"NOT NULL;DEFAULT:1;comment:'是否启用'"`
	Ctime         int64
	Utime         int64
}

func (EmailChainStep) TableName() string {
	return "email_chain_steps"
}

// SendRecord 发送记录表，(step_id, registration_id) 唯一，只插入不更新
type SendRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	StepID         int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_step_registration,priority:1;comment:'步骤ID'"`
	RegistrationID int64 `gorm:"type:BIGINT;NOT NULL;uniqueIndex:idx_step_registration,priority:2;comment:'报名ID'"`
	SentAt         int64 `gorm:"NOT NULL;comment:'发送时间，毫秒时间戳'"`
	Ctime          int64
}

func (SendRecord) TableName() string {
	return "send_records"
}

// ActiveStepRow 调度查询的结果行，步骤字段加上所属活动的开始时间
type ActiveStepRow struct {
	ID            int64
	ChainID       int64
	TemplateID    int64
	Subject       string
	OffsetMinutes int64
	Anchor        string
	EventID       int64
	EventStartsAt int64
}

type chainDAO struct {
	db *egorm.Component
}

func NewChainDAO(db *egorm.Component) ChainDAO {
	return &chainDAO{db: db}
}

func (d *chainDAO) FindActiveSteps(ctx context.Context) ([]ActiveStepRow, error) {
	var rows []ActiveStepRow
	err := d.db.WithContext(ctx).
		Table("email_chain_steps AS s").
		Select("s.id, s.chain_id, s.template_id, s.subject, s.offset_minutes, s.anchor, " +
			"e.id AS event_id, e.starts_at AS event_starts_at").
		Joins("JOIN email_chains c ON c.id = s.chain_id").
		Joins("JOIN events e ON e.id = c.event_id").
		Where("s.active = ? AND c.active = ? AND e.active = ?", true, true, true).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询可调度步骤失败: %w", err)
	}
	return rows, nil
}

func (d *chainDAO) FindSentRegistrationIDs(ctx context.Context, stepID int64) ([]int64, error) {
	var ids []int64
	err := d.db.WithContext(ctx).
		Model(&SendRecord{}).
		Where("step_id = ?", stepID).
		Pluck("registration_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询发送记录失败: %w", err)
	}
	return ids, nil
}

func (d *chainDAO) CreateSendRecord(ctx context.Context, record SendRecord) (SendRecord, error) {
	record.Ctime = time.Now().UnixMilli()
	err := d.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return SendRecord{}, fmt.Errorf("%w", errs.ErrSendRecordConflict)
		}
		return SendRecord{}, err
	}
	return record, nil
}

// isUniqueConstraintError 检查是否是唯一索引冲突错误
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if ok := errors.As(err, &me); ok {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}
