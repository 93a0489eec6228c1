package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/dao"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/handler"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/job"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/session"
	"github.com/lk2023060901/xdooria-reward/app/reward/migrations"
	"github.com/lk2023060901/xdooria-reward/pkg/app"
	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/database/redis"
	"github.com/lk2023060901/xdooria-reward/pkg/idgen"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/prometheus"
	"github.com/lk2023060901/xdooria-reward/pkg/scheduler"
	"github.com/lk2023060901/xdooria-reward/pkg/sentry"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
	"github.com/lk2023060901/xdooria-reward/pkg/web/middleware"
)

// storage 账本与指定角色存储
type storage struct {
	Store      repository.Store
	Guarantees repository.GuaranteeStore
}

func provideGameData(cfg *Config, l logger.Logger) (*gamedata.Index, error) {
	return gamedata.Load(&cfg.GameData, l)
}

func provideGachaConfig(cfg *Config) (*service.GachaConfig, error) {
	return config.MergeConfig(service.DefaultGachaConfig(), &cfg.Gacha)
}

func provideMailConfig(cfg *Config) (*service.MailConfig, error) {
	return config.MergeConfig(service.DefaultMailConfig(), &cfg.Mail)
}

func provideRNG(gcfg *service.GachaConfig) gacha.RNG {
	return gacha.NewRNG(gcfg.Seed)
}

func providePrometheusConfig(cfg *Config) *prometheus.Config {
	return &cfg.Prometheus
}

// provideMetrics 创建业务指标并注册到 Prometheus
func provideMetrics(cfg *Config, promClient *prometheus.Client) (*metrics.RewardMetrics, error) {
	m, err := metrics.New(&cfg.Metrics)
	if err != nil {
		return nil, err
	}
	if err := m.Register(promClient.Registry()); err != nil {
		return nil, err
	}
	return m, nil
}

// provideStorage 按驱动创建账本, memory 驱动不连接外部存储
func provideStorage(cfg *Config, m *metrics.RewardMetrics, l logger.Logger) (*storage, func(), error) {
	repoCfg, err := config.MergeConfig(repository.DefaultConfig(), &cfg.Repository)
	if err != nil {
		return nil, nil, err
	}

	if repoCfg.Driver == repository.DriverMemory {
		l.Warn("using in-memory ledger, data is not persisted")
		return &storage{
			Store:      repository.NewMemoryStore(l),
			Guarantees: repository.NewMemoryGuaranteeStore(),
		}, func() {}, nil
	}

	db, err := postgres.New(&cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	rdb, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := rdb.Close(); err != nil {
			l.Error("failed to close redis", "error", err)
		}
		db.Close()
	}

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := rdb.Ping(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	if repoCfg.AutoMigrate {
		if err := migrations.Apply(ctx, db, l); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	ids, err := idgen.NewSonyflake(repoCfg.MachineID)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	cache := dao.NewCacheDAO(rdb, l, m)
	daos := &repository.DAOs{
		Account:   dao.NewAccountDAO(l, m),
		Currency:  dao.NewCurrencyDAO(l, m),
		Item:      dao.NewItemDAO(l, m),
		Character: dao.NewCharacterDAO(l, m),
		Mail:      dao.NewMailDAO(l, m),
		Cache:     cache,
	}
	return &storage{
		Store:      repository.NewPGStore(repoCfg, db, rdb, ids, daos, l),
		Guarantees: repository.NewRedisGuaranteeStore(cache),
	}, cleanup, nil
}

func provideEventPublisher(cfg *Config, l logger.Logger) (event.Publisher, func(), error) {
	evCfg, err := config.MergeConfig(event.DefaultConfig(), &cfg.Event)
	if err != nil {
		return nil, nil, err
	}
	p, err := event.New(evCfg, l)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {
		if err := p.Close(); err != nil {
			l.Error("failed to close event publisher", "error", err)
		}
	}, nil
}

func provideSession(cfg *Config, store repository.Store, l logger.Logger) (*session.Authenticator, func(), error) {
	sessCfg, err := config.MergeConfig(session.DefaultConfig(), &cfg.Session)
	if err != nil {
		return nil, nil, err
	}
	a, err := session.NewAuthenticator(sessCfg, store, l)
	if err != nil {
		return nil, nil, err
	}
	return a, func() { _ = a.Close() }, nil
}

func provideSentry(cfg *Config) (*sentry.Client, func(), error) {
	c, err := sentry.New(&cfg.Sentry)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func provideRateLimiter(cfg *Config, l logger.Logger) (*middleware.RateLimiter, func(), error) {
	rlCfg, err := config.MergeConfig(middleware.DefaultRateLimitConfig(), &cfg.RateLimit)
	if err != nil {
		return nil, nil, err
	}
	rl := middleware.NewRateLimiter(rlCfg, l.Named("web.ratelimit"))
	return rl, func() { _ = rl.Close() }, nil
}

// provideWebServer 创建 HTTP 服务并注册路由
func provideWebServer(
	cfg *Config,
	h *handler.Handler,
	promClient *prometheus.Client,
	reporter *sentry.Client,
	l logger.Logger,
) (*web.Server, error) {
	s, err := web.NewServer(&cfg.Web, l, func(c *gin.Context, recovered any) {
		reporter.CapturePanic(recovered, map[string]string{
			"path":       c.FullPath(),
			"request_id": middleware.GetRequestID(c),
		})
	})
	if err != nil {
		return nil, err
	}

	metricsMW, err := middleware.Metrics(promClient)
	if err != nil {
		return nil, err
	}
	r := s.Router()
	r.Use(metricsMW)
	r.GET("/metrics", gin.WrapH(promClient.Handler()))
	h.Register(r)
	return s, nil
}

func provideScheduler(cfg *Config, janitor *job.MailJanitor, l logger.Logger) (*scheduler.Scheduler, error) {
	s, err := scheduler.New(&cfg.Scheduler, l)
	if err != nil {
		return nil, err
	}
	if err := janitor.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

func provideMailJanitorConfig(cfg *Config) (*job.MailJanitorConfig, error) {
	return config.MergeConfig(job.DefaultMailJanitorConfig(), &cfg.MailJanitor)
}

// reloader 配置文件变化时热更新日志等级与招募开关
type reloader struct {
	mgr    config.Manager
	logger *logger.BaseLogger
	gacha  *service.GachaService
}

func provideReloader(mgr config.Manager, l *logger.BaseLogger, gachaSvc *service.GachaService) *reloader {
	return &reloader{mgr: mgr, logger: l, gacha: gachaSvc}
}

func (r *reloader) Start() error {
	r.mgr.Watch(func(file string) {
		var level logger.Level
		if err := r.mgr.UnmarshalKey("log.level", &level); err == nil && level != "" {
			if err := r.logger.SetLevel(level); err != nil {
				r.logger.Warn("invalid log level in reloaded config", "level", level, "error", err)
			}
		}

		var gcfg service.GachaConfig
		if err := r.mgr.UnmarshalKey("gacha", &gcfg); err == nil {
			r.gacha.SetAllowOverrideRates(gcfg.AllowOverrideRates)
		}
		r.logger.Info("config reloaded", "file", file)
	})
	return nil
}

func (r *reloader) Stop(context.Context) error { return nil }

func provideServers(
	webServer *web.Server,
	promClient *prometheus.Client,
	sched *scheduler.Scheduler,
	m *metrics.RewardMetrics,
	r *reloader,
) []app.Server {
	return []app.Server{webServer, promClient, sched, m, r}
}

func provideClosers(st *storage) []app.Closer {
	return []app.Closer{st.Store}
}

func provideApplication(comps *app.Components, l logger.Logger) app.Application {
	return app.NewBaseApp(
		app.WithName(app.AppName),
		app.WithLogger(l),
	).Bind(comps)
}
