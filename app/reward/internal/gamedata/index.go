// Package gamedata 静态配置表索引, 启动时加载一次, 之后只读
package gamedata

import (
	"fmt"
	"sort"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/gameconfig"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// Config 配置表加载配置
type Config struct {
	DataDir string `mapstructure:"data_dir" json:"data_dir"`
}

// Index 只读索引, 可并发访问
type Index struct {
	tables Tables

	characters   map[int64]*CharacterExcel
	items        map[int64]*ItemExcel
	currencies   map[int64]*CurrencyExcel
	equipments   map[int64]*EquipmentExcel
	furnitures   map[int64]*FurnitureExcel
	goods        map[int64]*GoodsExcel
	shops        map[int64]*ShopExcel
	banners      map[int64]*ShopRecruitExcel
	pickupByShop map[int64]*PickupDuplicateBonusExcel
	names        map[int64]string

	pools *RarityPools
}

// Load 从数据目录加载全部配置表
func Load(cfg *Config, l logger.Logger) (*Index, error) {
	loader, err := gameconfig.NewLoader(cfg.DataDir, l)
	if err != nil {
		return nil, err
	}

	var t Tables
	if t.Characters, err = load[CharacterExcel](loader, TableCharacter); err != nil {
		return nil, err
	}
	if t.Items, err = load[ItemExcel](loader, TableItem); err != nil {
		return nil, err
	}
	if t.Currencies, err = load[CurrencyExcel](loader, TableCurrency); err != nil {
		return nil, err
	}
	if t.Equipments, err = load[EquipmentExcel](loader, TableEquipment); err != nil {
		return nil, err
	}
	if t.Furnitures, err = load[FurnitureExcel](loader, TableFurniture); err != nil {
		return nil, err
	}
	if t.Goods, err = load[GoodsExcel](loader, TableGoods); err != nil {
		return nil, err
	}
	if t.Shops, err = load[ShopExcel](loader, TableShop); err != nil {
		return nil, err
	}
	if t.ShopRecruits, err = load[ShopRecruitExcel](loader, TableShopRecruit); err != nil {
		return nil, err
	}
	if t.PickupDuplicateBonuses, err = load[PickupDuplicateBonusExcel](loader, TablePickupDuplicateBonus); err != nil {
		return nil, err
	}
	if t.LocalizeEtc, err = load[LocalizeEtcExcel](loader, TableLocalizeEtc); err != nil {
		return nil, err
	}

	idx, err := NewIndex(t)
	if err != nil {
		return nil, err
	}
	l.Named("gamedata").Info("game data loaded",
		"dir", cfg.DataDir,
		"characters", len(t.Characters),
		"items", len(t.Items),
		"goods", len(t.Goods),
		"shops", len(t.Shops),
		"banners", len(t.ShopRecruits),
		"released_ssr", len(idx.pools.SSR),
	)
	return idx, nil
}

func load[T any](loader *gameconfig.Loader, table string) ([]*T, error) {
	rows, err := gameconfig.Load[T](loader, table)
	if err != nil {
		return nil, err
	}
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

// NewIndex 基于已解码的表构建索引, 商品消耗列在此校验并合并
func NewIndex(t Tables) (*Index, error) {
	idx := &Index{
		tables:       t,
		characters:   make(map[int64]*CharacterExcel, len(t.Characters)),
		items:        make(map[int64]*ItemExcel, len(t.Items)),
		currencies:   make(map[int64]*CurrencyExcel, len(t.Currencies)),
		equipments:   make(map[int64]*EquipmentExcel, len(t.Equipments)),
		furnitures:   make(map[int64]*FurnitureExcel, len(t.Furnitures)),
		goods:        make(map[int64]*GoodsExcel, len(t.Goods)),
		shops:        make(map[int64]*ShopExcel, len(t.Shops)),
		banners:      make(map[int64]*ShopRecruitExcel, len(t.ShopRecruits)),
		pickupByShop: make(map[int64]*PickupDuplicateBonusExcel, len(t.PickupDuplicateBonuses)),
		names:        make(map[int64]string, len(t.LocalizeEtc)),
	}

	for _, c := range t.Characters {
		idx.characters[c.ID] = c
	}
	for _, it := range t.Items {
		idx.items[it.ID] = it
	}
	for _, c := range t.Currencies {
		idx.currencies[c.ID] = c
	}
	for _, e := range t.Equipments {
		idx.equipments[e.ID] = e
	}
	for _, f := range t.Furnitures {
		idx.furnitures[f.ID] = f
	}
	for _, g := range t.Goods {
		if err := g.zip(); err != nil {
			return nil, err
		}
		if _, dup := idx.goods[g.ID]; !dup {
			idx.goods[g.ID] = g
		}
	}
	for _, s := range t.Shops {
		if _, dup := idx.shops[s.ID]; !dup {
			idx.shops[s.ID] = s
		}
	}
	for _, b := range t.ShopRecruits {
		if _, dup := idx.banners[b.ID]; !dup {
			idx.banners[b.ID] = b
		}
	}
	for _, p := range t.PickupDuplicateBonuses {
		if _, dup := idx.pickupByShop[p.ShopID]; !dup {
			idx.pickupByShop[p.ShopID] = p
		}
	}
	for _, l := range t.LocalizeEtc {
		idx.names[l.Key] = l.DisplayName()
	}

	idx.pools = buildPools(t.Characters)
	return idx, nil
}

// Tables 返回原始表 (只读)
func (x *Index) Tables() *Tables { return &x.tables }

// Pools 返回招募池
func (x *Index) Pools() *RarityPools { return x.pools }

func (x *Index) Character(id int64) (*CharacterExcel, bool) {
	c, ok := x.characters[id]
	return c, ok
}

func (x *Index) Item(id int64) (*ItemExcel, bool) {
	v, ok := x.items[id]
	return v, ok
}

func (x *Index) Currency(id int64) (*CurrencyExcel, bool) {
	v, ok := x.currencies[id]
	return v, ok
}

func (x *Index) Equipment(id int64) (*EquipmentExcel, bool) {
	v, ok := x.equipments[id]
	return v, ok
}

func (x *Index) Furniture(id int64) (*FurnitureExcel, bool) {
	v, ok := x.furnitures[id]
	return v, ok
}

func (x *Index) Goods(id int64) (*GoodsExcel, bool) {
	v, ok := x.goods[id]
	return v, ok
}

// Shops 商店商品, 保持表顺序
func (x *Index) Shops() []*ShopExcel { return x.tables.Shops }

// GoodsRows 商品消耗定义, 保持表顺序
func (x *Index) GoodsRows() []*GoodsExcel { return x.tables.Goods }

// Banner 按 ID 查找卡池
func (x *Index) Banner(id int64) (*ShopRecruitExcel, bool) {
	b, ok := x.banners[id]
	return b, ok
}

// FirstBannerOf 表中第一个指定分类的卡池
func (x *Index) FirstBannerOf(category model.ShopCategoryType) (*ShopRecruitExcel, bool) {
	for _, b := range x.tables.ShopRecruits {
		if b.CategoryType == category {
			return b, true
		}
	}
	return nil, false
}

// BannerIDs 全部卡池 ID (升序)
func (x *Index) BannerIDs() []int64 {
	ids := make([]int64, 0, len(x.tables.ShopRecruits))
	for _, b := range x.tables.ShopRecruits {
		ids = append(ids, b.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PickupBonusByShopID 卡池的 UP 角色配置
func (x *Index) PickupBonusByShopID(shopID int64) (*PickupDuplicateBonusExcel, bool) {
	p, ok := x.pickupByShop[shopID]
	return p, ok
}

// Name 本地化名称
func (x *Index) Name(localizeID int64) (string, bool) {
	n, ok := x.names[localizeID]
	return n, ok
}

// FindParcelType 按 货币 > 道具 > 装备 > 家具 > 角色 的顺序识别 ID 所属类型
func (x *Index) FindParcelType(id int64) (model.ParcelType, bool) {
	if _, ok := x.currencies[id]; ok {
		return model.ParcelTypeCurrency, true
	}
	if _, ok := x.items[id]; ok {
		return model.ParcelTypeItem, true
	}
	if _, ok := x.equipments[id]; ok {
		return model.ParcelTypeEquipment, true
	}
	if _, ok := x.furnitures[id]; ok {
		return model.ParcelTypeFurniture, true
	}
	if _, ok := x.characters[id]; ok {
		return model.ParcelTypeCharacter, true
	}
	return model.ParcelTypeNone, false
}

// Exists 指定类型的静态 ID 是否存在
func (x *Index) Exists(t model.ParcelType, id int64) bool {
	var ok bool
	switch t {
	case model.ParcelTypeCurrency:
		_, ok = x.currencies[id]
	case model.ParcelTypeItem:
		_, ok = x.items[id]
	case model.ParcelTypeEquipment:
		_, ok = x.equipments[id]
	case model.ParcelTypeFurniture:
		_, ok = x.furnitures[id]
	case model.ParcelTypeCharacter:
		_, ok = x.characters[id]
	}
	return ok
}

func (x *Index) String() string {
	return fmt.Sprintf("gamedata.Index{characters=%d items=%d banners=%d}",
		len(x.characters), len(x.items), len(x.banners))
}
