// Package scheduler 基于 cron 表达式调度后台任务, 任务在 ants 协程池中执行
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
)

var (
	// ErrDuplicateJob 同名任务已注册
	ErrDuplicateJob = errors.New("scheduler: duplicate job name")
)

// Config 调度器配置
type Config struct {
	// PoolSize 同时执行的任务数上限
	PoolSize int `mapstructure:"pool_size" json:"pool_size"`
	// JobTimeout 单次执行超时
	JobTimeout time.Duration `mapstructure:"job_timeout" json:"job_timeout"`
	// Location 时区, 空为 UTC
	Location string `mapstructure:"location" json:"location"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		PoolSize:   4,
		JobTimeout: 5 * time.Minute,
	}
}

// JobFunc 任务函数, ctx 在超时或调度器停止时取消
type JobFunc func(ctx context.Context) error

// Scheduler 定时任务调度器
type Scheduler struct {
	cfg    *Config
	logger logger.Logger
	cron   *cron.Cron
	pool   *ants.Pool

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]cron.EntryID
	wg   sync.WaitGroup
}

// New 创建调度器
func New(cfg *Config, l logger.Logger) (*Scheduler, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NewNoop()
	}
	l = l.Named("scheduler")

	loc := time.UTC
	if merged.Location != "" {
		if loc, err = time.LoadLocation(merged.Location); err != nil {
			return nil, fmt.Errorf("invalid scheduler location %q: %w", merged.Location, err)
		}
	}

	pool, err := ants.NewPool(merged.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler pool: %w", err)
	}

	cl := cronLogger{l}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:    merged,
		logger: l,
		cron:   cron.New(cron.WithLocation(loc), cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		pool:   pool,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]cron.EntryID),
	}, nil
}

// AddJob 注册任务, spec 支持标准 5 段表达式与 @every 等描述符
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.dispatch(name, fn) })
	if err != nil {
		return fmt.Errorf("invalid spec for job %s: %w", name, err)
	}
	s.jobs[name] = id
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// RunNow 立即在协程池中执行一次已注册的任务
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.cron.Entry(id).Job.Run()
	return true
}

func (s *Scheduler) dispatch(name string, fn JobFunc) {
	s.wg.Add(1)
	err := s.pool.Submit(func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.JobTimeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			s.logger.Error("job failed", "job", name, "duration", time.Since(start), "error", err)
			return
		}
		s.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		s.wg.Done()
		s.logger.Warn("job skipped, pool busy", "job", name, "error", err)
	}
}

// Start 启动调度
func (s *Scheduler) Start() error {
	s.cron.Start()
	return nil
}

// Stop 停止调度, 取消运行中任务的 ctx 并等待其退出
func (s *Scheduler) Stop(ctx context.Context) error {
	<-s.cron.Stop().Done()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	defer s.pool.Release()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
