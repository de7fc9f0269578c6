package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/errs"
	"github.com/ego-component/egorm"
	"gorm.io/gorm"
)

type RegistrationDAO interface {
	Create(ctx context.Context, data Registration) (Registration, error)
	GetByID(ctx context.Context, id int64) (Registration, error)
	// FindConfirmedByEvent 查询某活动下所有已确认的报名
	FindConfirmedByEvent(ctx context.Context, eventID int64) ([]Registration, error)
	// UpdateStatus 更新报名状态
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type EventDAO interface {
	GetByID(ctx context.Context, id int64) (Event, error)
	GetBySlug(ctx context.Context, slug string) (Event, error)
}

// Registration 报名记录表
type Registration struct {
	ID           int64  `gorm:"primaryKey;comment:'雪花算法ID'"`
	EventID      int64  `gorm:"type:BIGINT;NOT NULL;index:idx_event_status,priority:1;comment:'所属活动ID'"`
	Name         string `gorm:"type:VARCHAR(256);NOT NULL;comment:'报名人姓名'"`
	Email        string `gorm:"type:VARCHAR(256);NOT NULL;comment:'报名人邮箱'"`
	Status       string `gorm:"type:ENUM('PENDING','CONFIRMED','CANCELLED');NOT NULL;DEFAULT:'PENDING';index:idx_event_status,priority:2;comment:'报名状态'"`
	CouponCode   string `gorm:"type:VARCHAR(64);comment:'下单时填写的优惠券码'"`
	RegisteredAt int64  `gorm:"NOT NULL;comment:'报名时间，毫秒时间戳'"`
	Ctime        int64
	Utime        int64
}

func (Registration) TableName() string {
	return "registrations"
}

// Event 活动表
type Event struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Slug      string `gorm:"type:VARCHAR(128);NOT NULL;uniqueIndex:idx_slug;comment:'活动标识'"`
	Name      string `gorm:"type:VARCHAR(256);NOT NULL;comment:'活动名称'"`
	StartsAt  int64  `gorm:"NOT NULL;comment:'活动开始时间，毫秒时间戳'"`
	Year      int    `gorm:"type:INT;NOT NULL;comment:'活动年份'"`
	BasePrice int64  `gorm:"type:BIGINT;NOT NULL;comment:'原价，单位分'"`
	Active    bool   `gorm:"NOT NULL;DEFAULT:1;comment:'是否启用'"`
	Ctime     int64
	Utime     int64
}

func (Event) TableName() string {
	return "events"
}

type registrationDAO struct {
	db *egorm.Component
}

func NewRegistrationDAO(db *egorm.Component) RegistrationDAO {
	return &registrationDAO{db: db}
}

func (d *registrationDAO) Create(ctx context.Context, data Registration) (Registration, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	if data.RegisteredAt == 0 {
		data.RegisteredAt = now
	}
	if err := d.db.WithContext(ctx).Create(&data).Error; err != nil {
		return Registration{}, fmt.Errorf("创建报名记录失败: %w", err)
	}
	return data, nil
}

func (d *registrationDAO) GetByID(ctx context.Context, id int64) (Registration, error) {
	var reg Registration
	err := d.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Registration{}, fmt.Errorf("%w: id = %d", errs.ErrRegistrationNotFound, id)
		}
		return Registration{}, err
	}
	return reg, nil
}

func (d *registrationDAO) FindConfirmedByEvent(ctx context.Context, eventID int64) ([]Registration, error) {
	var regs []Registration
	err := d.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, "CONFIRMED").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("查询已确认报名失败: %w", err)
	}
	return regs, nil
}

func (d *registrationDAO) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": status,
			"utime":  time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id = %d", errs.ErrRegistrationNotFound, id)
	}
	return nil
}

type eventDAO struct {
	db *egorm.Component
}

func NewEventDAO(db *egorm.Component) EventDAO {
	return &eventDAO{db: db}
}

func (d *eventDAO) GetByID(ctx context.Context, id int64) (Event, error) {
	var ev Event
	err := d.db.WithContext(ctx).First(&ev, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Event{}, fmt.Errorf("%w: id = %d", errs.ErrEventNotFound, id)
		}
		return Event{}, err
	}
	return ev, nil
}

func (d *eventDAO) GetBySlug(ctx context.Context, slug string) (Event, error) {
	var ev Event
	err := d.db.WithContext(ctx).First(&ev, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Event{}, fmt.Errorf("%w: slug = %q", errs.ErrEventNotFound, slug)
		}
		return Event{}, err
	}
	return ev, nil
}
