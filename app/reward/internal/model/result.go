package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RarityTier 稀有度
type RarityTier int32

const (
	RarityR   RarityTier = 1
	RaritySR  RarityTier = 2
	RaritySSR RarityTier = 3
)

func (r RarityTier) String() string {
	switch r {
	case RarityR:
		return "R"
	case RaritySR:
		return "SR"
	case RaritySSR:
		return "SSR"
	default:
		return "Unknown"
	}
}

func (r RarityTier) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText 接受 R/SR/SSR 或数字编码
func (r *RarityTier) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	for _, tier := range []RarityTier{RarityR, RaritySR, RaritySSR} {
		if strings.EqualFold(tier.String(), s) {
			*r = tier
			return nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= int(RarityR) && n <= int(RaritySSR) {
		*r = RarityTier(n)
		return nil
	}
	return fmt.Errorf("unknown rarity %q", s)
}

// GachaResult 单次抽取结果, 按抽取顺序排列
// Character 为新获得的角色, Stone 为重复角色转换的神名文字
type GachaResult struct {
	CharacterID int64        `json:"character_id"`
	Tier        RarityTier   `json:"tier"`
	Character   *CharacterDB `json:"character,omitempty"`
	Stone       *ItemDB      `json:"stone,omitempty"`
}

// ParcelResultDB 资源解析后的状态
type ParcelResultDB struct {
	AccountCurrency *AccountCurrency `json:"account_currency,omitempty"`
	// Items 本次涉及的堆叠行 (按 类型+ID 去重, 保留首次出现顺序)
	Items            []*ItemDB      `json:"items"`
	Characters       []*CharacterDB `json:"characters"`
	DuplicateToStone []*ItemDB      `json:"duplicate_to_stone,omitempty"`
	// Parcels 已应用的资源
	Parcels []Parcel `json:"parcels"`
}

// NewParcelResultDB 创建空结果
func NewParcelResultDB() *ParcelResultDB {
	return &ParcelResultDB{
		Items:      []*ItemDB{},
		Characters: []*CharacterDB{},
		Parcels:    []Parcel{},
	}
}

// TouchItem 记录一次堆叠行变更, 同一行仅保留一份最新状态
func (r *ParcelResultDB) TouchItem(item *ItemDB) {
	for i, it := range r.Items {
		if it.ParcelType == item.ParcelType && it.UniqueID == item.UniqueID {
			r.Items[i] = item
			return
		}
	}
	r.Items = append(r.Items, item)
}

// SumAmount 统计某类资源在已应用列表中的总量
func (r *ParcelResultDB) SumAmount(t ParcelType, id int64) int64 {
	var total int64
	for _, p := range r.Parcels {
		if p.Type == t && p.ID == id {
			total += p.Amount
		}
	}
	return total
}
