package model

import "time"

// Account 账号
type Account struct {
	ServerID int64  `json:"server_id" db:"server_id"`
	Nickname string `json:"nickname" db:"nickname"`
	Role     string `json:"role" db:"role"`
	// TimeOffsetSeconds 服务器时间偏移 (GameSettings)
	TimeOffsetSeconds int64     `json:"time_offset_seconds" db:"time_offset_seconds"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// ServerTime 返回账号视角的服务器时间
func (a *Account) ServerTime(now time.Time) time.Time {
	return now.Add(time.Duration(a.TimeOffsetSeconds) * time.Second)
}

// AccountCurrency 账号货币余额, 键为货币 ID
type AccountCurrency struct {
	AccountID int64           `json:"account_id"`
	Balances  map[int64]int64 `json:"balances"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewAccountCurrency 创建空余额
func NewAccountCurrency(accountID int64) *AccountCurrency {
	return &AccountCurrency{
		AccountID: accountID,
		Balances:  make(map[int64]int64),
	}
}

// Clone 深拷贝
func (c *AccountCurrency) Clone() *AccountCurrency {
	if c == nil {
		return nil
	}
	out := &AccountCurrency{AccountID: c.AccountID, UpdatedAt: c.UpdatedAt, Balances: make(map[int64]int64, len(c.Balances))}
	for k, v := range c.Balances {
		out.Balances[k] = v
	}
	return out
}

// ItemDB 堆叠资源行 (道具/装备/家具)
type ItemDB struct {
	ServerID   int64      `json:"server_id" db:"server_id"`
	AccountID  int64      `json:"account_id" db:"account_id"`
	ParcelType ParcelType `json:"parcel_type" db:"parcel_type"`
	UniqueID   int64      `json:"unique_id" db:"unique_id"`
	StackCount int64      `json:"stack_count" db:"stack_count"`
}

// CharacterDB 已拥有的角色
type CharacterDB struct {
	ServerID  int64     `json:"server_id" db:"server_id"`
	AccountID int64     `json:"account_id" db:"account_id"`
	UniqueID  int64     `json:"unique_id" db:"unique_id"`
	StarGrade int32     `json:"star_grade" db:"star_grade"`
	Level     int32     `json:"level" db:"level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
