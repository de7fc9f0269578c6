package coupon

import (
	"context"
	"time"

	"gitee.com/flycash/event-registration-platform/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
)

const defaultBatchSize = 50

// ExpiryCron 每天把年份已过的优惠券批量停用
type ExpiryCron struct {
	repo      repository.CouponRepository
	batchSize int
	logger    *elog.Component
}

func NewExpiryCron(repo repository.CouponRepository) *ExpiryCron {
	return &ExpiryCron{
		repo:      repo,
		batchSize: defaultBatchSize,
		logger:    elog.DefaultLogger,
	}
}

func (c *ExpiryCron) Do(ctx context.Context) error {
	year := time.Now().Year()
	var errList *multierror.Error
	// 停用成功的券会掉出查询条件，偏移量只为停用失败的券往前挪
	offset := 0
	for {
		findCtx, cancel := context.WithTimeout(ctx, time.Second*3)
		coupons, err := c.repo.FindActiveExpired(findCtx, year, offset, c.batchSize)
		cancel()
		if err != nil {
			errList = multierror.Append(errList, err)
			break
		}
		if len(coupons) == 0 {
			break
		}
		for _, cp := range coupons {
			deactCtx, cancel := context.WithTimeout(ctx, time.Second*3)
			err = c.repo.Deactivate(deactCtx, cp)
			cancel()
			if err != nil {
				c.logger.Error("停用过期优惠券失败",
					elog.Int64("couponID", cp.ID),
					elog.FieldErr(err))
				errList = multierror.Append(errList, err)
				offset++
				continue
			}
		}
		if len(coupons) < c.batchSize {
			break
		}
	}
	return errList.ErrorOrNil()
}
