package ioc

import (
	"time"

	"gitee.com/flycash/event-registration-platform/internal/service/scheduler"
	"github.com/gotomicro/ego/core/econf"
	"github.com/meoying/dlock-go"
)

const defaultTickInterval = 5 * time.Minute

func InitTickJob(svc scheduler.ChainScheduler, dclient dlock.Client) *scheduler.TickJob {
	type Config struct {
		Interval time.Duration `yaml:"interval"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("chainScheduler", &cfg); err != nil {
		panic(err)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultTickInterval
	}
	return scheduler.NewTickJob(svc, dclient, cfg.Interval)
}
