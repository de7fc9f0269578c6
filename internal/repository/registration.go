package repository

import (
	"context"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg domain.Registration) (domain.Registration, error)
	GetByID(ctx context.Context, id int64) (domain.Registration, error)
	FindConfirmedByEvent(ctx context.Context, eventID int64) ([]domain.Registration, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RegistrationStatus) error
}

type EventRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (domain.Event, error)
}

type registrationRepository struct {
	dao dao.RegistrationDAO
}

func NewRegistrationRepository(regDAO dao.RegistrationDAO) RegistrationRepository {
	return &registrationRepository{
		dao: regDAO,
	}
}

func (r *registrationRepository) Create(ctx context.Context, reg domain.Registration) (domain.Registration, error) {
	created, err := r.dao.Create(ctx, r.toEntity(reg))
	if err != nil {
		return domain.Registration{}, err
	}
	return r.toDomain(created), nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id int64) (domain.Registration, error) {
	reg, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Registration{}, err
	}
	return r.toDomain(reg), nil
}

func (r *registrationRepository) FindConfirmedByEvent(ctx context.Context, eventID int64) ([]domain.Registration, error) {
	regs, err := r.dao.FindConfirmedByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return slice.Map(regs, func(_ int, reg dao.Registration) domain.Registration {
		return r.toDomain(reg)
	}), nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id int64, status domain.RegistrationStatus) error {
	return r.dao.UpdateStatus(ctx, id, status.String())
}

func (r *registrationRepository) toEntity(reg domain.Registration) dao.Registration {
	entity := dao.Registration{
		ID:         reg.ID,
		EventID:    reg.EventID,
		Name:       reg.Name,
		Email:      reg.Email,
		Status:     reg.Status.String(),
		CouponCode: reg.CouponCode,
	}
	if !reg.RegisteredAt.IsZero() {
		entity.RegisteredAt = reg.RegisteredAt.UnixMilli()
	}
	return entity
}

func (r *registrationRepository) toDomain(reg dao.Registration) domain.Registration {
	return domain.Registration{
		ID:           reg.ID,
		EventID:      reg.EventID,
		Name:         reg.Name,
		Email:        reg.Email,
		Status:       domain.RegistrationStatus(reg.Status),
		CouponCode:   reg.CouponCode,
		RegisteredAt: time.UnixMilli(reg.RegisteredAt),
	}
}

type eventRepository struct {
	dao dao.EventDAO
}

func NewEventRepository(eventDAO dao.EventDAO) EventRepository {
	return &eventRepository{
		dao: eventDAO,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	ev, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	return r.toDomain(ev), nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (domain.Event, error) {
	ev, err := r.dao.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Event{}, err
	}
	return r.toDomain(ev), nil
}

func (r *eventRepository) toDomain(ev dao.Event) domain.Event {
	return domain.Event{
		ID:        ev.ID,
		Slug:      ev.Slug,
		Name:      ev.Name,
		StartsAt:  time.UnixMilli(ev.StartsAt),
		Year:      ev.Year,
		BasePrice: ev.BasePrice,
		Active:    ev.Active,
	}
}
