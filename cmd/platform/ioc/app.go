package ioc

import (
	"gitee.com/flycash/event-registration-platform/internal/service/scheduler"
	"github.com/gotomicro/ego/server/egin"
	"github.com/gotomicro/ego/task/ecron"
)

type App struct {
	HTTPServer *egin.Component
	Crons      []ecron.Ecron
	TickJob    *scheduler.TickJob
}
