package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Client Redis 客户端, 单机与集群模式统一为 UniversalClient
type Client struct {
	rdb goredis.UniversalClient
	cfg *Config
}

// NewClient 创建 Redis 客户端, 不主动建立连接
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	merged, err := mergeConfig(cfg)
	if err != nil {
		return nil, err
	}

	opts := &goredis.UniversalOptions{
		PoolSize:        merged.Pool.PoolSize,
		MinIdleConns:    merged.Pool.MinIdleConns,
		ConnMaxIdleTime: merged.Pool.ConnMaxIdleTime,
		DialTimeout:     merged.Pool.DialTimeout,
		ReadTimeout:     merged.Pool.ReadTimeout,
		WriteTimeout:    merged.Pool.WriteTimeout,
		PoolTimeout:     merged.Pool.PoolTimeout,
	}
	if merged.Cluster != nil {
		opts.Addrs = merged.Cluster.Addrs
		opts.Password = merged.Cluster.Password
		opts.IsClusterMode = true
	} else {
		opts.Addrs = []string{fmt.Sprintf("%s:%d", merged.Standalone.Host, merged.Standalone.Port)}
		opts.Password = merged.Standalone.Password
		opts.DB = merged.Standalone.DB
	}

	return &Client{rdb: goredis.NewUniversalClient(opts), cfg: merged}, nil
}

// Ping 测试连接
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.rdb.Close()
}
