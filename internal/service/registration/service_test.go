package registration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/domain"
	"gitee.com/flycash/event-registration-platform/internal/errs"
	"github.com/sony/sonyflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRegistrationServiceSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RegistrationServiceTestSuite))
}

type RegistrationServiceTestSuite struct {
	suite.Suite
	repo      *fakeRegRepo
	eventRepo *fakeEventRepo
	couponSvc *fakeCouponSvc
	svc       Service
}

func (s *RegistrationServiceTestSuite) SetupTest() {
	s.repo = &fakeRegRepo{regs: make(map[int64]domain.Registration)}
	s.eventRepo = &fakeEventRepo{
		events: map[int64]domain.Event{
			100: {ID: 100, Slug: "conf-2024", Year: 2024, BasePrice: 50000, Active: true,
				StartsAt: time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)},
			101: {ID: 101, Slug: "old-conf", Year: 2023, Active: false},
		},
	}
	s.couponSvc = &fakeCouponSvc{
		results: map[string]domain.ValidationResult{
			"vip50": {Outcome: domain.OutcomeValid, Discount: 5000, CouponID: 7},
			"dead":  {Outcome: domain.OutcomeInactive},
		},
	}
	idGen := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		MachineID: func() (uint16, error) {
			return 1, nil
		},
	})
	s.svc = NewService(s.repo, s.eventRepo, s.couponSvc, idGen)
}

func (s *RegistrationServiceTestSuite) TestCreate() {
	t := s.T()
	reg, err := s.svc.Create(context.Background(), domain.Registration{
		EventID: 100,
		Name:    "张三",
		Email:   "zhangsan@example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, reg.ID)
	assert.Equal(t, domain.RegistrationStatusPending, reg.Status)
	assert.False(t, reg.RegisteredAt.IsZero())
}

func (s *RegistrationServiceTestSuite) TestCreateRejectsInactiveEvent() {
	t := s.T()
	_, err := s.svc.Create(context.Background(), domain.Registration{
		EventID: 101,
		Name:    "张三",
		Email:   "zhangsan@example.com",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *RegistrationServiceTestSuite) TestCreateRejectsBadCoupon() {
	t := s.T()
	_, err := s.svc.Create(context.Background(), domain.Registration{
		EventID:    100,
		Name:       "张三",
		Email:      "zhangsan@example.com",
		CouponCode: "dead",
	})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func (s *RegistrationServiceTestSuite) TestConfirmRedeemsCoupon() {
	t := s.T()
	reg, err := s.svc.Create(context.Background(), domain.Registration{
		EventID:    100,
		Name:       "张三",
		Email:      "zhangsan@example.com",
		CouponCode: "vip50",
	})
	require.NoError(t, err)

	confirmed, err := s.svc.Confirm(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusConfirmed, confirmed.Status)
	assert.Equal(t, []int64{reg.ID}, s.couponSvc.redeemedBy[7])

	// 重复确认是幂等的，不会重复兑换
	_, err = s.svc.Confirm(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{reg.ID}, s.couponSvc.redeemedBy[7])
}

func (s *RegistrationServiceTestSuite) TestConfirmCancelled() {
	t := s.T()
	reg, err := s.svc.Create(context.Background(), domain.Registration{
		EventID: 100,
		Name:    "张三",
		Email:   "zhangsan@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, s.svc.Cancel(context.Background(), reg.ID))

	_, err = s.svc.Confirm(context.Background(), reg.ID)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

type fakeRegRepo struct {
	regs map[int64]domain.Registration
}

func (f *fakeRegRepo) Create(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	f.regs[reg.ID] = reg
	return reg, nil
}

func (f *fakeRegRepo) GetByID(_ context.Context, id int64) (domain.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return domain.Registration{}, fmt.Errorf("%w: id = %d", errs.ErrRegistrationNotFound, id)
	}
	return reg, nil
}

func (f *fakeRegRepo) FindConfirmedByEvent(_ context.Context, eventID int64) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range f.regs {
		if reg.EventID == eventID && reg.Status == domain.RegistrationStatusConfirmed {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (f *fakeRegRepo) UpdateStatus(_ context.Context, id int64, status domain.RegistrationStatus) error {
	reg, ok := f.regs[id]
	if !ok {
		return fmt.Errorf("%w: id = %d", errs.ErrRegistrationNotFound, id)
	}
	reg.Status = status
	f.regs[id] = reg
	return nil
}

type fakeEventRepo struct {
	events map[int64]domain.Event
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int64) (domain.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return domain.Event{}, fmt.Errorf("%w: id = %d", errs.ErrEventNotFound, id)
	}
	return ev, nil
}

func (f *fakeEventRepo) GetBySlug(_ context.Context, slug string) (domain.Event, error) {
	for _, ev := range f.events {
		if ev.Slug == slug {
			return ev, nil
		}
	}
	return domain.Event{}, fmt.Errorf("%w: slug = %q", errs.ErrEventNotFound, slug)
}

type fakeCouponSvc struct {
	results    map[string]domain.ValidationResult
	redeemedBy map[int64][]int64
}

func (f *fakeCouponSvc) Validate(_ context.Context, code string, _ domain.Event) (domain.ValidationResult, error) {
	res, ok := f.results[code]
	if !ok {
		return domain.ValidationResult{Outcome: domain.OutcomeNotFound}, nil
	}
	return res, nil
}

func (f *fakeCouponSvc) RecordRedemption(_ context.Context, couponID, registrationID int64) (domain.CouponRedemption, error) {
	if f.redeemedBy == nil {
		f.redeemedBy = make(map[int64][]int64)
	}
	f.redeemedBy[couponID] = append(f.redeemedBy[couponID], registrationID)
	return domain.CouponRedemption{CouponID: couponID, RegistrationID: registrationID}, nil
}
