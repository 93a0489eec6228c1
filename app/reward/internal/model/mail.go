package model

import (
	"fmt"
	"time"
)

// MailType 邮件类型
type MailType int32

const (
	MailTypeSystem MailType = 1
	MailTypePlayer MailType = 2
)

func (t MailType) String() string {
	switch t {
	case MailTypeSystem:
		return "System"
	case MailTypePlayer:
		return "Player"
	default:
		return fmt.Sprintf("MailType(%d)", int32(t))
	}
}

// MailDB 邮件记录
// 创建时 ReceiptDate 为空, 领取时写入一次, 领取流程不删除记录
type MailDB struct {
	ServerID    int64      `json:"server_id" db:"server_id"`
	AccountID   int64      `json:"account_id" db:"account_id"`
	Type        MailType   `json:"type" db:"type"`
	Sender      string     `json:"sender" db:"sender"`
	Comment     string     `json:"comment" db:"comment"`
	ParcelInfos []Parcel   `json:"parcel_infos" db:"parcel_infos"`
	SendDate    time.Time  `json:"send_date" db:"send_date"`
	ExpireDate  *time.Time `json:"expire_date,omitempty" db:"expire_date"`
	ReceiptDate *time.Time `json:"receipt_date,omitempty" db:"receipt_date"`
}

// Received 是否已领取
func (m *MailDB) Received() bool {
	return m.ReceiptDate != nil
}

// Expired 未领取且已过期
func (m *MailDB) Expired(now time.Time) bool {
	return m.ReceiptDate == nil && m.ExpireDate != nil && !m.ExpireDate.After(now)
}

// Clone 深拷贝
func (m *MailDB) Clone() *MailDB {
	out := *m
	out.ParcelInfos = append([]Parcel(nil), m.ParcelInfos...)
	if m.ExpireDate != nil {
		t := *m.ExpireDate
		out.ExpireDate = &t
	}
	if m.ReceiptDate != nil {
		t := *m.ReceiptDate
		out.ReceiptDate = &t
	}
	return &out
}
