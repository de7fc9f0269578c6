package ioc

import (
	"gitee.com/flycash/event-registration-platform/internal/service/coupon"
	"github.com/gotomicro/ego/task/ecron"
)

func Crons(expiry *coupon.ExpiryCron) []ecron.Ecron {
	c1 := ecron.Load("cron").Build(ecron.WithJob(expiry.Do))
	return []ecron.Ecron{c1}
}
