package prometheus

import "time"

// Config Prometheus 配置
type Config struct {
	// Namespace 指标命名空间 (应用名称)
	Namespace string `mapstructure:"namespace" json:"namespace"`
	Subsystem string `mapstructure:"subsystem" json:"subsystem"`

	HTTPServer HTTPServerConfig `mapstructure:"http_server" json:"http_server"`

	// DisableGoCollector 不注册 Go 运行时与进程采集器
	DisableGoCollector bool `mapstructure:"disable_go_collector" json:"disable_go_collector"`
}

// HTTPServerConfig 独立的指标 HTTP 服务器
type HTTPServerConfig struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled"`
	Addr    string        `mapstructure:"addr" json:"addr"`
	Path    string        `mapstructure:"path" json:"path"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace: "app",
		HTTPServer: HTTPServerConfig{
			Addr:    ":9090",
			Path:    "/metrics",
			Timeout: 10 * time.Second,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil || c.Namespace == "" {
		return ErrInvalidConfig
	}
	if c.HTTPServer.Enabled && (c.HTTPServer.Addr == "" || c.HTTPServer.Path == "") {
		return ErrInvalidConfig
	}
	return nil
}
