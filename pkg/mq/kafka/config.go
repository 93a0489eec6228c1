package kafka

import "time"

// Config Kafka 配置
type Config struct {
	// Brokers broker 地址列表
	Brokers []string `mapstructure:"brokers" json:"brokers"`

	// Producer 生产者配置
	Producer ProducerConfig `mapstructure:"producer" json:"producer"`

	// SASL 认证配置 (可选, 仅支持 PLAIN)
	SASL *SASLConfig `mapstructure:"sasl" json:"sasl,omitempty"`
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	// Async 异步发送, 失败只记录日志
	Async bool `mapstructure:"async" json:"async"`

	BatchSize    int           `mapstructure:"batch_size" json:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout" json:"batch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries" json:"max_retries"`

	// RequiredAcks 0: 不等待, 1: Leader, -1: 所有副本
	RequiredAcks int `mapstructure:"required_acks" json:"required_acks"`

	// Compression none, gzip, snappy, lz4, zstd
	Compression string `mapstructure:"compression" json:"compression"`

	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
}

// SASLConfig SASL PLAIN 认证配置
type SASLConfig struct {
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Brokers: []string{"localhost:9092"},
		Producer: ProducerConfig{
			BatchSize:    100,
			BatchTimeout: 50 * time.Millisecond,
			MaxRetries:   3,
			RequiredAcks: -1,
			Compression:  "snappy",
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	switch c.Producer.Compression {
	case "", "none", "gzip", "snappy", "lz4", "zstd":
	default:
		return ErrInvalidConfig
	}
	return nil
}
