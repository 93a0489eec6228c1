package sentry

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/xdooria-reward/pkg/config"
)

// Client Sentry 客户端, 零值与 nil 均可安全调用
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	captured atomic.Uint64
}

// Option 客户端选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 设置事件发送前的回调, 返回 nil 丢弃事件
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// New 创建 Sentry 客户端, DSN 为空时返回不上报的客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c := &Client{config: merged}
	if merged.DSN == "" {
		return c, nil
	}

	clientOpts := merged.toClientOptions()
	for _, opt := range opts {
		opt(&clientOpts)
	}
	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for key, value := range merged.Tags {
			scope.SetTag(key, value)
		}
	})
	c.hub = hub
	return c, nil
}

// Enabled 是否会上报事件
func (c *Client) Enabled() bool {
	return c != nil && c.hub != nil && !c.closed.Load()
}

// CaptureError 上报错误, tags 仅作用于本次事件
func (c *Client) CaptureError(err error, tags map[string]string) *sentry.EventID {
	if err == nil || !c.Enabled() {
		return nil
	}

	var id *sentry.EventID
	c.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		id = c.hub.CaptureException(err)
	})
	if id != nil {
		c.captured.Add(1)
	}
	return id
}

// CapturePanic 上报 recover 得到的值, 不重新抛出
func (c *Client) CapturePanic(recovered any, tags map[string]string) *sentry.EventID {
	if recovered == nil || !c.Enabled() {
		return nil
	}
	err, ok := recovered.(error)
	if !ok {
		err = errors.New(fmt.Sprint(recovered))
	}
	return c.CaptureError(err, tags)
}

// Captured 返回成功提交的事件数
func (c *Client) Captured() uint64 {
	if c == nil {
		return 0
	}
	return c.captured.Load()
}

// Close 刷新未发送的事件并关闭
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	if c.hub != nil {
		c.hub.Flush(c.config.ShutdownTimeout)
	}
	return nil
}
