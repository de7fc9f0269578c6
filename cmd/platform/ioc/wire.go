//go:build wireinject

package ioc

import (
	apihttp "gitee.com/flycash/event-registration-platform/internal/api/http"
	"gitee.com/flycash/event-registration-platform/internal/ioc"
	"gitee.com/flycash/event-registration-platform/internal/repository"
	"gitee.com/flycash/event-registration-platform/internal/repository/cache/local"
	redisc "gitee.com/flycash/event-registration-platform/internal/repository/cache/redis"
	"gitee.com/flycash/event-registration-platform/internal/repository/dao"
	couponsvc "gitee.com/flycash/event-registration-platform/internal/service/coupon"
	registrationsvc "gitee.com/flycash/event-registration-platform/internal/service/registration"
	"gitee.com/flycash/event-registration-platform/internal/service/scheduler"
	"github.com/google/wire"
)

var (
	BaseSet = wire.NewSet(
		ioc.InitDB,
		ioc.InitRedisClient,
		ioc.InitGoCache,
		ioc.InitDistributedLock,
		ioc.InitIDGenerator,
		ioc.InitMailer,

		local.NewLocalCache,
		redisc.NewCache,
	)
	couponSvcSet = wire.NewSet(
		couponsvc.NewService,
		couponsvc.NewExpiryCron,
		newCouponRepository,
		dao.NewCouponDAO,
	)
	registrationSvcSet = wire.NewSet(
		registrationsvc.NewService,
		repository.NewRegistrationRepository,
		repository.NewEventRepository,
		dao.NewRegistrationDAO,
		dao.NewEventDAO,
	)
	schedulerSet = wire.NewSet(
		scheduler.NewChainScheduler,
		repository.NewChainRepository,
		dao.NewChainDAO,
	)
)

func newCouponRepository(d dao.CouponDAO, l *local.Cache, r *redisc.Cache) repository.CouponRepository {
	return repository.NewCouponRepository(d, l, r)
}

func InitApp() *App {
	wire.Build(
		BaseSet,
		couponSvcSet,
		registrationSvcSet,
		schedulerSet,
		apihttp.NewHandler,
		ioc.InitHTTPServer,
		ioc.InitTickJob,
		ioc.Crons,
		wire.Struct(new(App), "*"),
	)
	return new(App)
}
