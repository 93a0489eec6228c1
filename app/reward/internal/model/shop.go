package model

import (
	"fmt"
	"strings"
)

// ShopCategoryType 商店分类
type ShopCategoryType int32

const (
	ShopCategoryGeneral ShopCategoryType = iota
	ShopCategorySecretStone
	ShopCategoryRaid
	ShopCategoryArena
	ShopCategoryEliteMission
	ShopCategoryTimeAttackDungeon
	ShopCategoryEvent
	ShopCategoryNormalGacha
	ShopCategoryPickupGacha
	ShopCategoryLimitedGacha
	ShopCategoryTicketGacha
	ShopCategoryGlobalSpecialGacha
	ShopCategoryFesGacha
	ShopCategorySelectPickupGacha
)

var shopCategoryNames = []string{
	"General",
	"SecretStone",
	"Raid",
	"Arena",
	"EliteMission",
	"TimeAttackDungeon",
	"Event",
	"NormalGacha",
	"PickupGacha",
	"LimitedGacha",
	"TicketGacha",
	"GlobalSpecialGacha",
	"FesGacha",
	"SelectPickupGacha",
}

func (c ShopCategoryType) String() string {
	if c >= 0 && int(c) < len(shopCategoryNames) {
		return shopCategoryNames[c]
	}
	return fmt.Sprintf("ShopCategoryType(%d)", int32(c))
}

// IsGacha 是否为招募分类
func (c ShopCategoryType) IsGacha() bool {
	return c >= ShopCategoryNormalGacha && c <= ShopCategorySelectPickupGacha
}

// ParseShopCategory 解析分类名 (忽略大小写)
func ParseShopCategory(s string) (ShopCategoryType, error) {
	for i, name := range shopCategoryNames {
		if strings.EqualFold(name, s) {
			return ShopCategoryType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shop category %q", s)
}

func (c ShopCategoryType) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(shopCategoryNames) {
		return nil, fmt.Errorf("unknown shop category %d", int32(c))
	}
	return []byte(c.String()), nil
}

func (c *ShopCategoryType) UnmarshalText(text []byte) error {
	v, err := ParseShopCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ShopProductType 商品类型
type ShopProductType int32

const (
	ShopProductTypeNone ShopProductType = iota
	ShopProductTypeGeneral
)

// ShopProductDB 商品展示信息
type ShopProductDB struct {
	ShopExcelID        int64            `json:"shop_excel_id"`
	Category           ShopCategoryType `json:"category"`
	DisplayOrder       int64            `json:"display_order"`
	PurchaseCountLimit int64            `json:"purchase_count_limit"`
	ProductType        ShopProductType  `json:"product_type"`
	Price              int64            `json:"price"`
}

// ShopInfoDB 分类商品列表
type ShopInfoDB struct {
	Category        ShopCategoryType `json:"category"`
	ShopProductList []*ShopProductDB `json:"shop_product_list"`
}
