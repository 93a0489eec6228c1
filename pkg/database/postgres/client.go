package postgres

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ Querier = (*Client)(nil)

// Client PostgreSQL 客户端
type Client struct {
	primary  *pgxpool.Pool
	replicas []*pgxpool.Pool
	cfg      *Config
	next     atomic.Uint64
}

// New 创建客户端并检查主库连通性
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	merged, err := MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := validateConfig(merged); err != nil {
		return nil, err
	}

	primary, err := createPool(merged, &merged.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary pool: %w", err)
	}

	c := &Client{primary: primary, cfg: merged}
	for i := range merged.Replicas {
		pool, err := createPool(merged, &merged.Replicas[i])
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create replica pool %d: %w", i, err)
		}
		c.replicas = append(c.replicas, pool)
	}
	return c, nil
}

func (c *Client) reader() *pgxpool.Pool {
	if len(c.replicas) == 0 {
		return c.primary
	}
	return c.replicas[c.next.Add(1)%uint64(len(c.replicas))]
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.QueryTimeout)
	}
	return ctx, func() {}
}

// Query 在只读实例上执行查询, 调用方负责关闭 rows
func (c *Client) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := c.reader().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// Exec 在主库执行写操作
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tag, err := c.primary.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping 检查主库连通性
func (c *Client) Ping(ctx context.Context) error {
	if err := c.primary.Ping(ctx); err != nil {
		return fmt.Errorf("primary ping failed: %w", err)
	}
	return nil
}

// Close 关闭所有连接池
func (c *Client) Close() {
	if c.primary != nil {
		c.primary.Close()
	}
	for _, r := range c.replicas {
		r.Close()
	}
}

func validateConfig(cfg *Config) error {
	if err := validateDBConfig(&cfg.Primary); err != nil {
		return fmt.Errorf("invalid primary config: %w", err)
	}
	for i := range cfg.Replicas {
		if err := validateDBConfig(&cfg.Replicas[i]); err != nil {
			return fmt.Errorf("invalid replica %d config: %w", i, err)
		}
	}
	if cfg.Pool.MaxConns <= 0 {
		return fmt.Errorf("%w: max_conns must be positive", ErrInvalidConfig)
	}
	if cfg.Pool.MinConns < 0 || cfg.Pool.MinConns > cfg.Pool.MaxConns {
		return fmt.Errorf("%w: min_conns must be within [0, max_conns]", ErrInvalidConfig)
	}
	return nil
}

func validateDBConfig(cfg *DBConfig) error {
	switch {
	case cfg.Host == "":
		return fmt.Errorf("%w: host is empty", ErrInvalidConfig)
	case cfg.Port <= 0 || cfg.Port > 65535:
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, cfg.Port)
	case cfg.User == "":
		return fmt.Errorf("%w: user is empty", ErrInvalidConfig)
	case cfg.DBName == "":
		return fmt.Errorf("%w: db_name is empty", ErrInvalidConfig)
	}
	return nil
}

func createPool(cfg *Config, db *DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connString(cfg, db))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolCfg.MaxConns = cfg.Pool.MaxConns
	poolCfg.MinConns = cfg.Pool.MinConns
	poolCfg.MaxConnLifetime = cfg.Pool.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.Pool.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func connString(cfg *Config, db *DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		db.Host, db.Port, db.User, db.Password, db.DBName, db.SSLMode,
		int(cfg.ConnectTimeout.Seconds()),
	)
}
