//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/command"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/handler"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/job"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/pkg/app"
	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/prometheus"
)

func InitApp(cfg *Config, mgr config.Manager, l *logger.BaseLogger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架
		app.ProviderSet,
		wire.Bind(new(logger.Logger), new(*logger.BaseLogger)),

		// 2. 指标
		providePrometheusConfig,
		prometheus.New,
		provideMetrics,

		// 3. 静态配置表
		provideGameData,

		// 4. 存储 (postgres + redis 或内存)
		provideStorage,
		wire.FieldsOf(new(*storage), "Store", "Guarantees"),

		// 5. 事件
		provideEventPublisher,

		// 6. 业务服务
		provideGachaConfig,
		provideMailConfig,
		provideRNG,
		gacha.NewEngine,
		service.NewParcelService,
		service.NewGachaService,
		service.NewShopService,
		service.NewMailService,

		// 7. 会话与运维指令
		provideSession,
		command.NewDispatcher,

		// 8. HTTP
		provideSentry,
		provideRateLimiter,
		handler.NewHandler,
		provideWebServer,

		// 9. 定时任务
		provideMailJanitorConfig,
		job.NewMailJanitor,
		provideScheduler,

		// 10. 配置热更新与组装
		provideReloader,
		provideServers,
		provideClosers,
		provideApplication,
	))
}
