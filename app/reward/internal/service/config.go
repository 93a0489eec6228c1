package service

import "time"

// GachaConfig 招募配置
type GachaConfig struct {
	// UnitPrice 单抽货币价格
	UnitPrice int64 `mapstructure:"unit_price" validate:"omitempty,min=1"`
	// DuplicateStoneAmount 重复角色转换的神名文字数量
	DuplicateStoneAmount int64 `mapstructure:"duplicate_stone_amount" validate:"omitempty,min=1"`
	// AllowOverrideRates 是否接受请求中的自定义概率, 运行时可热更新
	AllowOverrideRates bool `mapstructure:"allow_override_rates"`
	// Seed 随机种子, 0 表示随机
	Seed uint64 `mapstructure:"seed"`
}

// DefaultGachaConfig 默认招募配置
func DefaultGachaConfig() *GachaConfig {
	return &GachaConfig{
		UnitPrice:            120,
		DuplicateStoneAmount: 50,
	}
}

// MailConfig 邮件配置
type MailConfig struct {
	// DefaultExpire 系统邮件默认有效期
	DefaultExpire time.Duration `mapstructure:"default_expire"`
	// BroadcastWorkers 群发协程数
	BroadcastWorkers int `mapstructure:"broadcast_workers" validate:"omitempty,min=1"`
}

// DefaultMailConfig 默认邮件配置
func DefaultMailConfig() *MailConfig {
	return &MailConfig{
		DefaultExpire:    7 * 24 * time.Hour,
		BroadcastWorkers: 8,
	}
}
