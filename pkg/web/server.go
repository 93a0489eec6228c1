package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/web/middleware"
	"github.com/lk2023060901/xdooria-reward/pkg/web/validator"
)

// Server Web 服务
type Server struct {
	engine  *gin.Engine
	config  *Config
	logger  logger.Logger
	server  *http.Server
	addr    atomic.Value // string
	started atomic.Bool
}

// NewServer 创建 Web 服务, 默认挂载 RequestID、Logger、Recovery、CORS 中间件
func NewServer(cfg *Config, l logger.Logger, reporter middleware.PanicReporter) (*Server, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.Default()
	}

	gin.SetMode(merged.Mode)
	validator.Init()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(l.Named("web.access")),
		middleware.Recovery(l.Named("web.recovery"), reporter),
		middleware.CORS(merged.AllowOrigins),
	)

	return &Server{
		engine: engine,
		config: merged,
		logger: l.Named("web.server"),
	}, nil
}

// Router 返回 Gin 引擎, 用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Addr 返回实际监听地址, Start 之前为空
func (s *Server) Addr() string {
	v, _ := s.addr.Load().(string)
	return v
}

// Start 监听端口并在后台处理请求
func (s *Server) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerAlreadyStarted
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return fmt.Errorf("web: listen failed: %w", err)
	}
	s.addr.Store(ln.Addr().String())

	s.server = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
		}
	}()
	s.logger.Info("http server started", "addr", s.Addr())
	return nil
}

// Stop 优雅关闭, 等待处理中的请求完成
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("web: forced to shutdown: %w", err)
	}
	s.logger.Info("http server exited")
	return nil
}
