package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/cache/lru"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/web/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// RequestsPerSecond 每个键每秒请求数
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second"`
	// Burst 突发容量
	Burst int `mapstructure:"burst" json:"burst"`
	// MaxLimiters 最多保留的限流器数量
	MaxLimiters int `mapstructure:"max_limiters" json:"max_limiters"`
	// LimiterTTL 限流器闲置过期时间
	LimiterTTL time.Duration `mapstructure:"limiter_ttl" json:"limiter_ttl"`
}

// DefaultRateLimitConfig 默认限流配置
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		MaxLimiters:       10000,
		LimiterTTL:        10 * time.Minute,
	}
}

// KeyFunc 限流键, 返回空字符串表示不限流
type KeyFunc func(*gin.Context) string

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// RateLimiter 按键限流, 限流器存放在 LRU 中
type RateLimiter struct {
	cfg      RateLimitConfig
	limiters *lru.LRU[string, *rate.Limiter]
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(cfg *RateLimitConfig, l logger.Logger) *RateLimiter {
	if cfg == nil {
		cfg = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		cfg: *cfg,
		limiters: lru.New[string, *rate.Limiter](&lru.Config{
			MaxSize:         cfg.MaxLimiters,
			DefaultTTL:      cfg.LimiterTTL,
			CleanupInterval: cfg.LimiterTTL,
		}),
		logger: l,
	}
}

// Allow 检查键是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	limiter := rl.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	})
	return limiter.Allow()
}

// Close 停止后台清理
func (rl *RateLimiter) Close() error {
	return rl.limiters.Close()
}

// Handler 生成限流中间件
func (rl *RateLimiter) Handler(keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" || rl.Allow(key) {
			c.Next()
			return
		}

		rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "key", key, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(1))
		c.AbortWithStatusJSON(errors.CodeToStatus(errors.CodeRateLimited), gin.H{
			"code":     errors.CodeRateLimited,
			"message":  "too many requests",
			"data":     nil,
			"trace_id": GetRequestID(c),
		})
	}
}
