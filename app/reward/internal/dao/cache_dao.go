package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/pkg/database/redis"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/lk2023060901/xdooria-reward/pkg/serializer"
)

const (
	// Redis key 前缀
	unreadKeyPrefix    = "cache:mail:unread:"
	unreadGenKeyPrefix = "cache:mail:unread_gen:"
	guaranteeKeyPrefix = "gacha:guarantee:"
	accountLockPrefix  = "lock:account:"

	// TTL
	unreadCacheTTL = 10 * time.Minute
	unreadGenTTL   = 24 * time.Hour
	guaranteeTTL   = 7 * 24 * time.Hour
)

// AccountLockKey 账号分布式锁 key
func AccountLockKey(accountID int64) string {
	return fmt.Sprintf("%s%d", accountLockPrefix, accountID)
}

// CacheDAO 缓存数据访问对象
type CacheDAO struct {
	redis   *redis.Client
	codec   serializer.Serializer
	logger  logger.Logger
	metrics *metrics.RewardMetrics
}

// NewCacheDAO 创建缓存 DAO
func NewCacheDAO(rdb *redis.Client, l logger.Logger, m *metrics.RewardMetrics) *CacheDAO {
	return &CacheDAO{
		redis:   rdb,
		codec:   serializer.NewMsgPack(),
		logger:  l.Named("dao.cache"),
		metrics: m,
	}
}

// 计数与代数使用同一 hash tag, 集群模式下落在同一槽位
func unreadKey(accountID int64) string {
	return fmt.Sprintf("%s{%d}", unreadKeyPrefix, accountID)
}

func unreadGenKey(accountID int64) string {
	return fmt.Sprintf("%s{%d}", unreadGenKeyPrefix, accountID)
}

// KEYS[1] 代数 key, KEYS[2] 计数 key; 代数未变化时才写入
const setUnreadScript = `
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`

// KEYS[1] 代数 key, KEYS[2] 计数 key
const invalidateUnreadScript = `
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return 1
`

func guaranteeKey(accountID int64) string {
	return fmt.Sprintf("%s%d", guaranteeKeyPrefix, accountID)
}

// GetUnreadCount 读取未领取邮件数缓存, 未命中返回 ok=false
func (d *CacheDAO) GetUnreadCount(ctx context.Context, accountID int64) (int64, bool, error) {
	data, err := d.redis.GetBytes(ctx, unreadKey(accountID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			d.metrics.RecordCacheMiss("mail_unread")
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get unread count: %w", err)
	}

	var n int64
	if err := d.codec.Deserialize(data, &n); err != nil {
		d.logger.Warn("corrupted unread count cache", "account_id", accountID, "error", err)
		d.metrics.RecordCacheMiss("mail_unread")
		return 0, false, nil
	}
	d.metrics.RecordCacheHit("mail_unread")
	return n, true, nil
}

// UnreadGeneration 读取未领取邮件数缓存的代数, 查库前调用
func (d *CacheDAO) UnreadGeneration(ctx context.Context, accountID int64) (string, error) {
	gen, err := d.redis.Get(ctx, unreadGenKey(accountID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return "0", nil
		}
		return "", fmt.Errorf("failed to get unread generation: %w", err)
	}
	return gen, nil
}

// SetUnreadCount 写入未领取邮件数缓存, 期间发生过失效时放弃写入并返回 false
func (d *CacheDAO) SetUnreadCount(ctx context.Context, accountID, n int64, gen string) (bool, error) {
	data, err := d.codec.Serialize(n)
	if err != nil {
		return false, err
	}
	res, err := d.redis.Eval(ctx, setUnreadScript,
		[]string{unreadGenKey(accountID), unreadKey(accountID)},
		gen, data, unreadCacheTTL.Milliseconds(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to set unread count: %w", err)
	}
	written, _ := res.(int64)
	return written == 1, nil
}

// InvalidateUnreadCount 删除未领取邮件数缓存并推进代数
func (d *CacheDAO) InvalidateUnreadCount(ctx context.Context, accountIDs ...int64) error {
	var errs []error
	for _, id := range accountIDs {
		keys := []string{unreadGenKey(id), unreadKey(id)}
		if _, err := d.redis.Eval(ctx, invalidateUnreadScript, keys, unreadGenTTL.Milliseconds()); err != nil {
			errs = append(errs, fmt.Errorf("account %d: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to invalidate unread count: %w", errors.Join(errs...))
	}
	return nil
}

// SetGuarantee 设置账号的一次性指定角色
func (d *CacheDAO) SetGuarantee(ctx context.Context, accountID, characterID int64) error {
	data, err := d.codec.Serialize(characterID)
	if err != nil {
		return err
	}
	if err := d.redis.Set(ctx, guaranteeKey(accountID), data, guaranteeTTL); err != nil {
		return fmt.Errorf("failed to set gacha guarantee: %w", err)
	}
	return nil
}

// PeekGuarantee 读取指定角色但不消耗, 无设置返回 0
func (d *CacheDAO) PeekGuarantee(ctx context.Context, accountID int64) (int64, error) {
	data, err := d.redis.GetBytes(ctx, guaranteeKey(accountID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get gacha guarantee: %w", err)
	}
	var id int64
	if err := d.codec.Deserialize(data, &id); err != nil {
		return 0, fmt.Errorf("failed to decode gacha guarantee: %w", err)
	}
	return id, nil
}

// TakeGuarantee 读取并清除指定角色, 无设置返回 0
func (d *CacheDAO) TakeGuarantee(ctx context.Context, accountID int64) (int64, error) {
	data, err := d.redis.GetDel(ctx, guaranteeKey(accountID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to take gacha guarantee: %w", err)
	}
	var id int64
	if err := d.codec.Deserialize([]byte(data), &id); err != nil {
		return 0, fmt.Errorf("failed to decode gacha guarantee: %w", err)
	}
	return id, nil
}

// ClearGuarantee 清除指定角色
func (d *CacheDAO) ClearGuarantee(ctx context.Context, accountID int64) error {
	if _, err := d.redis.Del(ctx, guaranteeKey(accountID)); err != nil {
		return fmt.Errorf("failed to clear gacha guarantee: %w", err)
	}
	return nil
}
