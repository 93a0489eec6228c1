package prometheus

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client Prometheus 客户端, 持有独立的 Registry
type Client struct {
	config   *Config
	logger   logger.Logger
	registry *prometheus.Registry

	mu      sync.Mutex
	metrics map[string]prometheus.Collector

	httpServer *http.Server
	closed     atomic.Bool
}

// New 创建 Prometheus 客户端, 独立 HTTP 服务器需调用 Start 启动
func New(cfg *Config, l logger.Logger) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.NewNoop()
	}

	c := &Client{
		config:   merged,
		logger:   l.Named("prometheus"),
		registry: prometheus.NewRegistry(),
		metrics:  make(map[string]prometheus.Collector),
	}
	if !merged.DisableGoCollector {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c, nil
}

// Registry 返回底层 Registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回指标 HTTP Handler, 可挂载到业务 HTTP 服务器
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Register 注册自定义采集器
func (c *Client) Register(collector prometheus.Collector) error {
	return c.registry.Register(collector)
}

// Start 启动独立的指标 HTTP 服务器, 未启用时直接返回
func (c *Client) Start() error {
	if !c.config.HTTPServer.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.HTTPServer.Path, c.Handler())
	c.httpServer = &http.Server{
		Addr:         c.config.HTTPServer.Addr,
		Handler:      mux,
		ReadTimeout:  c.config.HTTPServer.Timeout,
		WriteTimeout: c.config.HTTPServer.Timeout,
	}

	ln, err := net.Listen("tcp", c.config.HTTPServer.Addr)
	if err != nil {
		return err
	}
	go func() {
		if err := c.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("metrics http server error", "error", err)
		}
	}()
	c.logger.Info("metrics http server started", "addr", c.config.HTTPServer.Addr)
	return nil
}

// Stop 关闭 HTTP 服务器
func (c *Client) Stop(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.httpServer != nil {
		return c.httpServer.Shutdown(ctx)
	}
	return nil
}
