package main

import (
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/job"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/session"
	"github.com/lk2023060901/xdooria-reward/pkg/app"
	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/database/redis"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/prometheus"
	"github.com/lk2023060901/xdooria-reward/pkg/scheduler"
	"github.com/lk2023060901/xdooria-reward/pkg/sentry"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
	"github.com/lk2023060901/xdooria-reward/pkg/web/middleware"
)

// Config 定义 Reward 服务的完整配置结构
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// HTTP 服务与限流
	Web       web.Config                 `mapstructure:"web"`
	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`

	// 存储
	Repository repository.Config `mapstructure:"repository"`
	Postgres   postgres.Config   `mapstructure:"postgres"`
	Redis      redis.Config      `mapstructure:"redis"`

	// 静态配置表
	GameData gamedata.Config `mapstructure:"gamedata"`

	// 业务
	Gacha   service.GachaConfig `mapstructure:"gacha"`
	Mail    service.MailConfig  `mapstructure:"mail"`
	Session session.Config      `mapstructure:"session"`

	// 事件
	Event event.Config `mapstructure:"event"`

	// 定时任务
	Scheduler   scheduler.Config      `mapstructure:"scheduler"`
	MailJanitor job.MailJanitorConfig `mapstructure:"mail_janitor"`

	// 可观测性
	Prometheus prometheus.Config `mapstructure:"prometheus"`
	Metrics    metrics.Config    `mapstructure:"metrics"`
	Sentry     sentry.Config     `mapstructure:"sentry"`
}

func main() {
	// 1. 加载配置
	mgr, err := app.LoadConfig()
	if err != nil {
		panic(err)
	}
	var cfg Config
	if err := mgr.Unmarshal(&cfg); err != nil {
		panic(err)
	}

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}
	logger.SetDefault(l)

	// 3. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, mgr, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
