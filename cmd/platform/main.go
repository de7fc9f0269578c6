package main

import (
	"context"

	"gitee.com/flycash/event-registration-platform/cmd/platform/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
)

func main() {
	eapp := ego.New()
	app := ioc.InitApp()
	app.TickJob.Start(context.Background())
	if err := eapp.
		Serve(app.HTTPServer).
		Cron(app.Crons...).
		Run(); err != nil {
		elog.Panic("startup", elog.Any("err", err))
	}
}
