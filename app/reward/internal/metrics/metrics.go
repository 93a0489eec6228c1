package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/metrics/system"
	"github.com/prometheus/client_golang/prometheus"
)

// Config 指标配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string `mapstructure:"namespace" json:"namespace"`
	// SystemCollectInterval 系统指标采集间隔
	SystemCollectInterval time.Duration `mapstructure:"system_collect_interval" json:"system_collect_interval"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:             "reward",
		SystemCollectInterval: 5 * time.Second,
	}
}

// RewardMetrics 奖励服务指标, nil 接收者上的记录方法为空操作
type RewardMetrics struct {
	config *Config

	// 招募指标
	GachaPullTotal     *prometheus.CounterVec // 抽取次数（按分类、稀有度）
	GachaPurchaseTotal *prometheus.CounterVec // 招募购买（按结果）

	// 邮件指标
	MailSentTotal     *prometheus.CounterVec // 发送邮件数（按类型）
	MailReceivedTotal prometheus.Counter     // 领取邮件数
	MailPurgedTotal   prometheus.Counter     // 过期清理数

	// 数据库指标
	DBQueryTotal    *prometheus.CounterVec   // 数据库查询总数（按操作、结果）
	DBQueryDuration *prometheus.HistogramVec // 数据库查询延迟

	// 缓存指标
	CacheHitTotal  *prometheus.CounterVec // 缓存命中（按缓存类型）
	CacheMissTotal *prometheus.CounterVec // 缓存未命中（按缓存类型）

	systemCollector *system.Collector
}

// New 创建奖励服务指标
func New(cfg *Config) (*RewardMetrics, error) {
	newCfg, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge metrics config: %w", err)
	}

	sysCollector, err := system.New(newCfg.Namespace, newCfg.SystemCollectInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to create system collector: %w", err)
	}

	ns := newCfg.Namespace
	return &RewardMetrics{
		config: newCfg,

		GachaPullTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "gacha_pulls_total",
				Help:      "招募抽取总数",
			},
			[]string{"category", "tier"},
		),
		GachaPurchaseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "gacha_purchases_total",
				Help:      "招募购买总数",
			},
			[]string{"result"}, // result: success/failed
		),

		MailSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "mail_sent_total",
				Help:      "发送邮件总数",
			},
			[]string{"type"},
		),
		MailReceivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "mail_received_total",
				Help:      "领取邮件总数",
			},
		),
		MailPurgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "mail_purged_total",
				Help:      "过期未领取邮件清理总数",
			},
		),

		DBQueryTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "db_queries_total",
				Help:      "数据库查询总数",
			},
			[]string{"operation", "result"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "db_query_duration_seconds",
				Help:      "数据库查询延迟（秒）",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),

		CacheHitTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_hits_total",
				Help:      "缓存命中总数",
			},
			[]string{"cache_type"},
		),
		CacheMissTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "cache_misses_total",
				Help:      "缓存未命中总数",
			},
			[]string{"cache_type"},
		),

		systemCollector: sysCollector,
	}, nil
}

// Register 注册指标到 Prometheus Registry
func (m *RewardMetrics) Register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.GachaPullTotal,
		m.GachaPurchaseTotal,
		m.MailSentTotal,
		m.MailReceivedTotal,
		m.MailPurgedTotal,
		m.DBQueryTotal,
		m.DBQueryDuration,
		m.CacheHitTotal,
		m.CacheMissTotal,
		m.systemCollector,
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

// RecordGachaPull 记录一次抽取
func (m *RewardMetrics) RecordGachaPull(category, tier string) {
	if m == nil {
		return
	}
	m.GachaPullTotal.WithLabelValues(category, tier).Inc()
}

// RecordGachaPurchase 记录一次招募购买
func (m *RewardMetrics) RecordGachaPurchase(success bool) {
	if m == nil {
		return
	}
	m.GachaPurchaseTotal.WithLabelValues(result(success)).Inc()
}

// RecordMailSent 记录发送邮件
func (m *RewardMetrics) RecordMailSent(mailType string, count int) {
	if m == nil {
		return
	}
	m.MailSentTotal.WithLabelValues(mailType).Add(float64(count))
}

// RecordMailReceived 记录领取邮件
func (m *RewardMetrics) RecordMailReceived(count int) {
	if m == nil {
		return
	}
	m.MailReceivedTotal.Add(float64(count))
}

// RecordMailPurged 记录清理过期邮件
func (m *RewardMetrics) RecordMailPurged(count int64) {
	if m == nil {
		return
	}
	m.MailPurgedTotal.Add(float64(count))
}

// RecordDBQuery 记录数据库查询
func (m *RewardMetrics) RecordDBQuery(operation string, success bool, duration float64) {
	if m == nil {
		return
	}
	m.DBQueryTotal.WithLabelValues(operation, result(success)).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheHit 记录缓存命中
func (m *RewardMetrics) RecordCacheHit(cacheType string) {
	if m == nil {
		return
	}
	m.CacheHitTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *RewardMetrics) RecordCacheMiss(cacheType string) {
	if m == nil {
		return
	}
	m.CacheMissTotal.WithLabelValues(cacheType).Inc()
}

// SystemStats 系统统计
func (m *RewardMetrics) SystemStats() system.Stats {
	return m.systemCollector.GetStats()
}

// Start 启动系统指标采集
func (m *RewardMetrics) Start() error {
	return m.systemCollector.Start()
}

// Stop 停止后台采集
func (m *RewardMetrics) Stop(ctx context.Context) error {
	return m.systemCollector.Stop(ctx)
}
