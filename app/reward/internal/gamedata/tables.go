package gamedata

import (
	"fmt"
	"strings"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
)

// 配置表名, 对应 <data_dir>/<name>.json
const (
	TableCharacter            = "CharacterExcelTable"
	TableItem                 = "ItemExcelTable"
	TableCurrency             = "CurrencyExcelTable"
	TableEquipment            = "EquipmentExcelTable"
	TableFurniture            = "FurnitureExcelTable"
	TableGoods                = "GoodsExcelTable"
	TableShop                 = "ShopExcelTable"
	TableShopRecruit          = "ShopRecruitExcelTable"
	TablePickupDuplicateBonus = "PickupDuplicateBonusExcelTable"
	TableLocalizeEtc          = "LocalizeEtcExcelTable"
)

// ProductionStepRelease 已上线
const ProductionStepRelease = "Release"

// CharacterLimit 角色获取限定类型
type CharacterLimit int32

const (
	// LimitPermanent 常驻
	LimitPermanent CharacterLimit = iota
	// LimitLimited 限定卡池
	LimitLimited
	// LimitUnique 活动/剧情获得, 不进入招募
	LimitUnique
	// LimitFest 庆典限定
	LimitFest
)

var characterLimitNames = []string{"Permanent", "Limited", "Unique", "Fest"}

func (c CharacterLimit) String() string {
	if c >= 0 && int(c) < len(characterLimitNames) {
		return characterLimitNames[c]
	}
	return fmt.Sprintf("CharacterLimit(%d)", int32(c))
}

func (c *CharacterLimit) UnmarshalText(text []byte) error {
	for i, name := range characterLimitNames {
		if strings.EqualFold(name, string(text)) {
			*c = CharacterLimit(i)
			return nil
		}
	}
	return fmt.Errorf("unknown character limit %q", text)
}

// CharacterExcel 角色表
type CharacterExcel struct {
	ID                int64            `json:"Id"`
	DevName           string           `json:"DevName"`
	Rarity            model.RarityTier `json:"Rarity"`
	ProductionStep    string           `json:"ProductionStep"`
	IsPlayable        bool             `json:"IsPlayableCharacter"`
	IsLimited         CharacterLimit   `json:"IsLimited"`
	DefaultStarGrade  int32            `json:"DefaultStarGrade"`
	SecretStoneItemID int64            `json:"SecretStoneItemId"`
	LocalizeEtcID     int64            `json:"LocalizeEtcId"`
}

// Released 已上线且可操作
func (c *CharacterExcel) Released() bool {
	return c.ProductionStep == ProductionStepRelease && c.IsPlayable
}

// ItemExcel 道具表
type ItemExcel struct {
	ID                    int64            `json:"Id"`
	ItemCategory          string           `json:"ItemCategory"`
	Rarity                model.RarityTier `json:"Rarity"`
	LocalizeEtcID         int64            `json:"LocalizeEtcId"`
	ImmediateUse          bool             `json:"ImmediateUse"`
	UsingResultParcelType model.ParcelType `json:"UsingResultParcelType"`
	UsingResultID         int64            `json:"UsingResultId"`
	// RecruitPullCount 招募券对应的抽数, 0 表示非招募券
	RecruitPullCount int64    `json:"RecruitPullCount"`
	StackableMax     int64    `json:"StackableMax"`
	Tags             []string `json:"Tags"`
}

// CurrencyExcel 货币表
type CurrencyExcel struct {
	ID            int64  `json:"ID"`
	CurrencyType  string `json:"CurrencyType"`
	LocalizeEtcID int64  `json:"LocalizeEtcId"`
	AmountLimit   int64  `json:"AmountLimit"`
}

// EquipmentExcel 装备表
type EquipmentExcel struct {
	ID                int64            `json:"Id"`
	EquipmentCategory string           `json:"EquipmentCategory"`
	Rarity            model.RarityTier `json:"Rarity"`
	LocalizeEtcID     int64            `json:"LocalizeEtcId"`
}

// FurnitureExcel 家具表
type FurnitureExcel struct {
	ID            int64            `json:"Id"`
	Category      string           `json:"Category"`
	Rarity        model.RarityTier `json:"Rarity"`
	LocalizeEtcID int64            `json:"LocalizeEtcId"`
}

// GoodsExcel 商品消耗定义, 三列并行数组在加载时合并为 Consume
type GoodsExcel struct {
	ID                  int64              `json:"Id"`
	ConsumeParcelType   []model.ParcelType `json:"ConsumeParcelType"`
	ConsumeParcelID     []int64            `json:"ConsumeParcelId"`
	ConsumeParcelAmount []int64            `json:"ConsumeParcelAmount"`

	Consume []model.Parcel `json:"-"`
}

// zip 合并消耗列, 长度不一致视为配置错误
func (g *GoodsExcel) zip() error {
	n := len(g.ConsumeParcelType)
	if len(g.ConsumeParcelID) != n || len(g.ConsumeParcelAmount) != n {
		return fmt.Errorf("goods %d: consume columns length mismatch (type=%d id=%d amount=%d)",
			g.ID, n, len(g.ConsumeParcelID), len(g.ConsumeParcelAmount))
	}
	g.Consume = make([]model.Parcel, n)
	for i := 0; i < n; i++ {
		g.Consume[i] = model.Parcel{
			Type:   g.ConsumeParcelType[i],
			ID:     g.ConsumeParcelID[i],
			Amount: g.ConsumeParcelAmount[i],
		}
	}
	return nil
}

// Price 首个消耗数量, 无消耗时为 0
func (g *GoodsExcel) Price() int64 {
	if len(g.ConsumeParcelAmount) == 0 {
		return 0
	}
	return g.ConsumeParcelAmount[0]
}

// ShopExcel 商店商品表
type ShopExcel struct {
	ID                 int64                  `json:"Id"`
	CategoryType       model.ShopCategoryType `json:"CategoryType"`
	GoodsID            []int64                `json:"GoodsId"`
	DisplayOrder       int64                  `json:"DisplayOrder"`
	PurchaseCountLimit int64                  `json:"PurchaseCountLimit"`
	// SalePeriodFrom/SalePeriodTo 格式 2006-01-02 15:04:05, 均为空表示常驻
	SalePeriodFrom string `json:"SalePeriodFrom"`
	SalePeriodTo   string `json:"SalePeriodTo"`
}

// HasSalePeriod 是否配置了销售时间段
func (s *ShopExcel) HasSalePeriod() bool {
	return s.SalePeriodFrom != "" || s.SalePeriodTo != ""
}

// ShopRecruitExcel 招募卡池
type ShopRecruitExcel struct {
	ID            int64                  `json:"Id"`
	CategoryType  model.ShopCategoryType `json:"CategoryType"`
	RecruitCoinID int64                  `json:"RecruitCoinId"`
	DisplayOrder  int64                  `json:"DisplayOrder"`
}

// PickupDuplicateBonusExcel UP 角色配置
type PickupDuplicateBonusExcel struct {
	ID                int64                  `json:"Id"`
	ShopCategoryType  model.ShopCategoryType `json:"ShopCategoryType"`
	ShopID            int64                  `json:"ShopId"`
	PickupCharacterID int64                  `json:"PickupCharacterId"`
}

// LocalizeEtcExcel 本地化名称
type LocalizeEtcExcel struct {
	Key    int64  `json:"Key"`
	NameEn string `json:"NameEn"`
	NameKr string `json:"NameKr"`
}

// DisplayName NameEn, 其次 NameKr, 均为空时为 Unknown
func (l *LocalizeEtcExcel) DisplayName() string {
	switch {
	case l.NameEn != "":
		return l.NameEn
	case l.NameKr != "":
		return l.NameKr
	default:
		return "Unknown"
	}
}

// Tables 全部配置表, 行顺序与文件一致
type Tables struct {
	Characters             []*CharacterExcel
	Items                  []*ItemExcel
	Currencies             []*CurrencyExcel
	Equipments             []*EquipmentExcel
	Furnitures             []*FurnitureExcel
	Goods                  []*GoodsExcel
	Shops                  []*ShopExcel
	ShopRecruits           []*ShopRecruitExcel
	PickupDuplicateBonuses []*PickupDuplicateBonusExcel
	LocalizeEtc            []*LocalizeEtcExcel
}
