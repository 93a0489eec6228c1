package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Second

const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

const refreshScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`

// Lock 单节点分布式锁, value 为持有者标识
type Lock struct {
	client *Client
	key    string
	value  string
	ttl    time.Duration
}

// NewLock 创建分布式锁
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{client: client, key: key, value: uuid.NewString(), ttl: ttl}
}

// TryLock 非阻塞获取锁
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	return ok, nil
}

// LockWithRetry 按固定间隔重试获取锁, 超过次数返回 ErrLockFailed
func (l *Lock) LockWithRetry(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i <= maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if i == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock 仅持有者可释放
func (l *Lock) Unlock(ctx context.Context) error {
	return l.evalOwned(ctx, unlockScript)
}

// Refresh 延长锁的过期时间
func (l *Lock) Refresh(ctx context.Context) error {
	return l.evalOwned(ctx, refreshScript, l.ttl.Milliseconds())
}

func (l *Lock) evalOwned(ctx context.Context, script string, extra ...interface{}) error {
	args := append([]interface{}{l.value}, extra...)
	res, err := l.client.Eval(ctx, script, []string{l.key}, args...)
	if err != nil {
		return err
	}
	if n, ok := res.(int64); !ok || n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// LockOptions WithLock 的重试与回调选项
type LockOptions struct {
	TTL           time.Duration
	RetryInterval time.Duration
	MaxRetries    int
	// OnUnlockError 释放锁失败时回调 (锁在 fn 执行期间过期等)
	OnUnlockError func(key string, err error)
}

// WithLock 在锁保护下执行 fn, fn 的错误原样返回
func (c *Client) WithLock(ctx context.Context, key string, opts LockOptions, fn func() error) error {
	lock := NewLock(c, key, opts.TTL)
	if err := lock.LockWithRetry(ctx, opts.RetryInterval, opts.MaxRetries); err != nil {
		return err
	}

	defer func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil && opts.OnUnlockError != nil {
			opts.OnUnlockError(key, err)
		}
	}()

	return fn()
}
