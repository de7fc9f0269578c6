//go:build e2e

package dao

import (
	"context"
	"sync"
	"testing"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	testioc "gitee.com/flycash/event-registration-platform/internal/test/ioc"
)

func TestCouponDAOSuite(t *testing.T) {
	suite.Run(t, new(CouponDAOTestSuite))
}

type CouponDAOTestSuite struct {
	suite.Suite
	db  *gorm.DB
	dao CouponDAO
}

func (s *CouponDAOTestSuite) SetupSuite() {
	s.db = testioc.InitDB()
	err := s.db.AutoMigrate(&Coupon{}, &CouponRedemption{})
	s.NoError(err)
	s.dao = NewCouponDAO(s.db)
}

func (s *CouponDAOTestSuite) TearDownTest() {
	s.db.Exec("TRUNCATE TABLE `coupons`")
	s.db.Exec("TRUNCATE TABLE `coupon_redemptions`")
}

// TestConcurrentRedemption 最后一个名额被并发抢，行锁保证只有一个能成功
func (s *CouponDAOTestSuite) TestConcurrentRedemption() {
	t := s.T()
	ctx := context.Background()

	coupon := Coupon{
		Code:           "last1",
		Year:           2024,
		DiscountType:   "FLAT",
		DiscountAmount: 5000,
		MaxRedemptions: 1,
		Active:         true,
		Ctime:          time.Now().UnixMilli(),
		Utime:          time.Now().UnixMilli(),
	}
	require.NoError(t, s.db.Create(&coupon).Error)

	const concurrency = 8
	var wg sync.WaitGroup
	results := make([]error, concurrency)
	for i := range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.dao.CreateRedemption(ctx, CouponRedemption{
				CouponID:       coupon.ID,
				RegistrationID: int64(1000 + i),
			})
			results[i] = err
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, errs.ErrCouponLimitReached)
		}
	}
	assert.Equal(t, 1, succeeded)

	cnt, err := s.dao.CountRedemptions(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)
}

// TestOnePerRegistration registration_id 唯一，一个报名只能兑换一张券
func (s *CouponDAOTestSuite) TestOnePerRegistration() {
	t := s.T()
	ctx := context.Background()

	first := Coupon{Code: "a10", Year: 2024, DiscountType: "FLAT", DiscountAmount: 1000, Active: true}
	second := Coupon{Code: "b20", Year: 2024, DiscountType: "FLAT", DiscountAmount: 2000, Active: true}
	require.NoError(t, s.db.Create(&first).Error)
	require.NoError(t, s.db.Create(&second).Error)

	_, err := s.dao.CreateRedemption(ctx, CouponRedemption{CouponID: first.ID, RegistrationID: 7})
	require.NoError(t, err)

	_, err = s.dao.CreateRedemption(ctx, CouponRedemption{CouponID: second.ID, RegistrationID: 7})
	assert.ErrorIs(t, err, errs.ErrRedemptionConflict)
}

func (s *CouponDAOTestSuite) TestFindActiveExpired() {
	t := s.T()
	ctx := context.Background()

	require.NoError(t, s.db.Create(&Coupon{Code: "old1", Year: 2022, DiscountType: "FREE", Active: true}).Error)
	require.NoError(t, s.db.Create(&Coupon{Code: "old2", Year: 2023, DiscountType: "FLAT", DiscountAmount: 100, Active: true}).Error)
	require.NoError(t, s.db.Create(&Coupon{Code: "gone", Year: 2023, DiscountType: "FLAT", DiscountAmount: 100, Active: false}).Error)
	require.NoError(t, s.db.Create(&Coupon{Code: "cur", Year: 2024, DiscountType: "FLAT", DiscountAmount: 100, Active: true}).Error)

	coupons, err := s.dao.FindActiveExpired(ctx, 2024, 0, 10)
	require.NoError(t, err)
	require.Len(t, coupons, 2)

	require.NoError(t, s.dao.Deactivate(ctx, coupons[0].ID))
	coupons, err = s.dao.FindActiveExpired(ctx, 2024, 0, 10)
	require.NoError(t, err)
	assert.Len(t, coupons, 1)
}
