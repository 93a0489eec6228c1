package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	cfg, err := MergeConfig(DefaultConfig(), &Config{Primary: DBConfig{Port: 6432}})
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Primary.Host)
	assert.Equal(t, 6432, cfg.Primary.Port)
	require.NoError(t, validateConfig(cfg))

	cfg.Replicas = []DBConfig{{Host: "replica", Port: 5432, User: "ro"}}
	assert.ErrorIs(t, validateConfig(cfg), ErrInvalidConfig)

	cfg.Replicas = nil
	cfg.Pool.MinConns = cfg.Pool.MaxConns + 1
	assert.ErrorIs(t, validateConfig(cfg), ErrInvalidConfig)
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestConnString(t *testing.T) {
	cfg := DefaultConfig()
	s := connString(cfg, &cfg.Primary)
	assert.Contains(t, s, "host=localhost")
	assert.Contains(t, s, "dbname=xdooria_reward")
	assert.Contains(t, s, "connect_timeout=10")
}

// 集成测试需要设置 XDOORIA_TEST_POSTGRES_HOST
func newTestClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	host := os.Getenv("XDOORIA_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("XDOORIA_TEST_POSTGRES_HOST not set")
	}
	c, err := New(&Config{
		Primary:        DBConfig{Host: host, User: "postgres", Password: os.Getenv("XDOORIA_TEST_POSTGRES_PASSWORD"), DBName: "postgres"},
		ConnectTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

type kv struct {
	K string `db:"k"`
	V int64  `db:"v"`
}

func TestWithTx(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	err := c.WithTx(ctx, func(tx Tx) error {
		if _, err := tx.Exec(ctx, `CREATE TEMP TABLE tx_probe (k TEXT PRIMARY KEY, v BIGINT NOT NULL)`); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO tx_probe (k, v) VALUES ($1, $2)`, "a", 1); err != nil {
			return err
		}
		got, err := Get[kv](ctx, tx, `SELECT k, v FROM tx_probe WHERE k = $1`, "a")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), got.V)

		n, err := Scalar[int64](ctx, tx, `SELECT COUNT(*) FROM tx_probe`)
		assert.Equal(t, int64(1), n)
		return err
	})
	require.NoError(t, err)

	err = c.WithTx(ctx, func(tx Tx) error {
		_, err := Get[kv](ctx, tx, `SELECT 'x'::text AS k, 1::bigint AS v WHERE false`)
		return err
	})
	assert.ErrorIs(t, err, ErrNoRows)
}
