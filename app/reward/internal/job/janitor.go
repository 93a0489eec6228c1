// Package job 后台定时任务
package job

import (
	"context"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/scheduler"
)

// MailJanitorName 过期邮件清理任务名
const MailJanitorName = "mail.purge_expired"

// MailJanitorConfig 过期邮件清理配置
type MailJanitorConfig struct {
	// Enabled 默认关闭, 需在配置中显式开启
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Spec cron 表达式
	Spec string `mapstructure:"spec" json:"spec" validate:"required"`
	// RunOnStart 注册后立即执行一次
	RunOnStart bool `mapstructure:"run_on_start" json:"run_on_start"`
}

// DefaultMailJanitorConfig 开启后默认每 10 分钟清理一次
func DefaultMailJanitorConfig() *MailJanitorConfig {
	return &MailJanitorConfig{
		Spec: "@every 10m",
	}
}

// MailJanitor 删除过期的未领取邮件
type MailJanitor struct {
	cfg    *MailJanitorConfig
	mail   *service.MailService
	logger logger.Logger
}

func NewMailJanitor(cfg *MailJanitorConfig, mail *service.MailService, l logger.Logger) *MailJanitor {
	if cfg == nil {
		cfg = DefaultMailJanitorConfig()
	}
	return &MailJanitor{
		cfg:    cfg,
		mail:   mail,
		logger: l.Named("job.mail_janitor"),
	}
}

// Register 注册到调度器, 未启用时不注册
func (j *MailJanitor) Register(s *scheduler.Scheduler) error {
	if !j.cfg.Enabled {
		j.logger.Info("mail janitor disabled")
		return nil
	}
	if err := s.AddJob(MailJanitorName, j.cfg.Spec, j.Run); err != nil {
		return err
	}
	if j.cfg.RunOnStart {
		s.RunNow(MailJanitorName)
	}
	return nil
}

// Run 执行一次清理
func (j *MailJanitor) Run(ctx context.Context) error {
	n, err := j.mail.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	j.logger.DebugContext(ctx, "mail janitor finished", "purged", n)
	return nil
}
