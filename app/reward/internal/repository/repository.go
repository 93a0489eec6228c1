// Package repository 账号账本仓储, 所有写操作在单账号事务内串行执行
package repository

import (
	"context"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config 仓储配置
type Config struct {
	// Driver postgres | memory
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=postgres memory"`
	// LockTTL 账号锁过期时间
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	LockRetryInterval time.Duration `mapstructure:"lock_retry_interval"`
	LockMaxRetries    int           `mapstructure:"lock_max_retries"`
	// MachineID sonyflake 机器号
	MachineID uint16 `mapstructure:"machine_id"`
	// AutoMigrate 启动时执行建表脚本
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Driver:            DriverPostgres,
		LockTTL:           10 * time.Second,
		LockRetryInterval: 50 * time.Millisecond,
		LockMaxRetries:    100,
		MachineID:         1,
	}
}

// Ledger 单账号事务内的账本视图, 只在 InAccountTx 回调内有效
type Ledger interface {
	AccountID() int64
	// NextID 分配行 ID (邮件/角色/堆叠行)
	NextID() (int64, error)

	// ===== 货币 =====
	Currency(ctx context.Context) (*model.AccountCurrency, error)
	SetCurrency(ctx context.Context, currencyID, amount int64) error

	// ===== 堆叠资源 =====
	// Item 不存在返回 nil
	Item(ctx context.Context, t model.ParcelType, uniqueID int64) (*model.ItemDB, error)
	SaveItem(ctx context.Context, item *model.ItemDB) error

	// ===== 角色 =====
	HasCharacter(ctx context.Context, uniqueID int64) (bool, error)
	AddCharacter(ctx context.Context, c *model.CharacterDB) error

	// ===== 邮件 =====
	// UnreceivedMails 锁定并返回 ids 中属于本账号且未领取的邮件, 按 ServerID 升序
	UnreceivedMails(ctx context.Context, ids []int64) ([]*model.MailDB, error)
	StampReceipt(ctx context.Context, ids []int64, at time.Time) error
	InsertMail(ctx context.Context, m *model.MailDB) error
	DeleteUnreceived(ctx context.Context) (int64, error)
}

// Store 账本仓储
type Store interface {
	// InAccountTx 串行化同一账号的事务, fn 返回错误时全部回滚
	InAccountTx(ctx context.Context, accountID int64, fn func(ctx context.Context, l Ledger) error) error

	// Account 不存在返回 errcode.ErrDataNotFound
	Account(ctx context.Context, accountID int64) (*model.Account, error)
	CreateAccount(ctx context.Context, acc *model.Account) error

	Characters(ctx context.Context, accountID int64) ([]*model.CharacterDB, error)
	Items(ctx context.Context, accountID int64, t model.ParcelType) ([]*model.ItemDB, error)

	ListMails(ctx context.Context, accountID int64, received bool) ([]*model.MailDB, error)
	CountUnreceived(ctx context.Context, accountID int64) (int64, error)
	// PurgeExpiredMails 删除已过期且未领取的邮件, 返回每个账号删除的数量
	PurgeExpiredMails(ctx context.Context, now time.Time) (map[int64]int64, error)

	Close() error
}
