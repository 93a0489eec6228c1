package gamedata

import (
	"testing"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Load(&Config{DataDir: "testdata"}, logger.NewNoop())
	require.NoError(t, err)
	return idx
}

func TestLoadTables(t *testing.T) {
	idx := loadTestIndex(t)

	c, ok := idx.Character(10002)
	require.True(t, ok)
	assert.Equal(t, model.RaritySSR, c.Rarity)
	assert.Equal(t, LimitLimited, c.IsLimited)

	it, ok := idx.Item(1)
	require.True(t, ok)
	assert.Equal(t, model.ParcelTypeCurrency, it.UsingResultParcelType)

	// 家具表缺失时为空表
	assert.Empty(t, idx.Tables().Furnitures)
}

func TestGoodsConsumeZipped(t *testing.T) {
	idx := loadTestIndex(t)

	g, ok := idx.Goods(501)
	require.True(t, ok)
	assert.Equal(t, []model.Parcel{
		{Type: model.ParcelTypeItem, ID: 2, Amount: 1},
		{Type: model.ParcelTypeCurrency, ID: 4, Amount: 120},
	}, g.Consume)
	assert.Equal(t, int64(1), g.Price())
}

func TestGoodsLengthMismatchFailsLoad(t *testing.T) {
	_, err := Load(&Config{DataDir: "testdata/broken"}, logger.NewNoop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}

func TestRarityPools(t *testing.T) {
	p := loadTestIndex(t).Pools()

	assert.Equal(t, []int64{10000, 10001}, p.SSR)
	assert.Equal(t, []int64{20000}, p.SR)
	assert.Equal(t, []int64{30000}, p.R)
	assert.Equal(t, []int64{10002}, p.Limited)
	assert.Equal(t, []int64{10003}, p.Fest)
}

func TestBanners(t *testing.T) {
	idx := loadTestIndex(t)

	b, ok := idx.FirstBannerOf(model.ShopCategoryNormalGacha)
	require.True(t, ok)
	assert.Equal(t, int64(100), b.ID)

	_, ok = idx.FirstBannerOf(model.ShopCategoryFesGacha)
	assert.False(t, ok)

	assert.Equal(t, []int64{100, 101}, idx.BannerIDs())

	bonus, ok := idx.PickupBonusByShopID(101)
	require.True(t, ok)
	assert.Equal(t, int64(10001), bonus.PickupCharacterID)
}

func TestFindParcelType(t *testing.T) {
	idx := loadTestIndex(t)

	// ID 4 同时是货币与装备, 货币优先
	pt, ok := idx.FindParcelType(4)
	require.True(t, ok)
	assert.Equal(t, model.ParcelTypeCurrency, pt)

	// ID 1 同时是货币与道具
	pt, _ = idx.FindParcelType(1)
	assert.Equal(t, model.ParcelTypeCurrency, pt)

	pt, _ = idx.FindParcelType(2)
	assert.Equal(t, model.ParcelTypeItem, pt)

	pt, _ = idx.FindParcelType(20000)
	assert.Equal(t, model.ParcelTypeCharacter, pt)

	_, ok = idx.FindParcelType(123456)
	assert.False(t, ok)
}

func TestSearchAndInspect(t *testing.T) {
	idx := loadTestIndex(t)

	matches := idx.SearchItems("RECRUIT")
	require.Len(t, matches, 2)
	assert.Equal(t, "[Item] Recruit Coin (ID: 1)", matches[0].String())

	// NameEn 为空时使用 NameKr, 均为空时为 Unknown
	assert.Len(t, idx.SearchItems("재료"), 1)
	assert.Len(t, idx.SearchItems("unknown"), 1)

	details := idx.InspectItems("2")
	require.Len(t, details, 1)
	assert.Contains(t, details[0], "Name: Recruitment Ticket")
	assert.Contains(t, details[0], "Tags: Ticket, Gacha")

	assert.Len(t, idx.InspectItems("recruit"), 2)
	assert.Empty(t, idx.InspectItems("777"))
}
