package service

import (
	"context"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopIDs(info *model.ShopInfoDB) []int64 {
	ids := make([]int64, len(info.ShopProductList))
	for i, p := range info.ShopProductList {
		ids[i] = p.ShopExcelID
	}
	return ids
}

func TestShopListInsideSalePeriod(t *testing.T) {
	h := newHarness(t, constRNG{})
	h.shop.now = fixedClock(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	infos := h.shop.List(context.Background(), h.account, []model.ShopCategoryType{model.ShopCategoryGeneral})
	require.Len(t, infos, 1)
	assert.Equal(t, model.ShopCategoryGeneral, infos[0].Category)
	assert.Equal(t, []int64{1, 2}, shopIDs(infos[0]))

	p := infos[0].ShopProductList[0]
	// 商品 999 不存在, 取表中首个被引用的商品 500
	assert.Equal(t, int64(1200), p.Price)
	assert.Equal(t, int64(5), p.PurchaseCountLimit)
	assert.Equal(t, model.ShopProductTypeGeneral, p.ProductType)
	assert.Zero(t, infos[0].ShopProductList[1].Price)
}

func TestShopListOutsideSalePeriod(t *testing.T) {
	h := newHarness(t, constRNG{})
	h.shop.now = fixedClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	infos := h.shop.List(context.Background(), h.account, []model.ShopCategoryType{model.ShopCategoryGeneral})
	require.Len(t, infos, 1)
	assert.Equal(t, []int64{1}, shopIDs(infos[0]))
}

func TestShopListAppliesAccountOffset(t *testing.T) {
	h := newHarness(t, constRNG{})
	h.shop.now = fixedClock(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))

	infos := h.shop.List(context.Background(), h.account, []model.ShopCategoryType{model.ShopCategoryGeneral})
	require.Len(t, infos, 1)
	assert.Equal(t, []int64{1}, shopIDs(infos[0]))

	h.account.TimeOffsetSeconds = 2 * 3600
	infos = h.shop.List(context.Background(), h.account, []model.ShopCategoryType{model.ShopCategoryGeneral})
	require.Len(t, infos, 1)
	assert.Equal(t, []int64{1, 2}, shopIDs(infos[0]))
}

func TestShopListOmitsEmptyCategories(t *testing.T) {
	h := newHarness(t, constRNG{})

	infos := h.shop.List(context.Background(), h.account, []model.ShopCategoryType{
		model.ShopCategoryRaid,
		model.ShopCategoryGeneral,
		model.ShopCategoryArena,
	})
	require.Len(t, infos, 1)
	assert.Equal(t, model.ShopCategoryGeneral, infos[0].Category)

	infos = h.shop.List(context.Background(), h.account, []model.ShopCategoryType{model.ShopCategoryRaid})
	assert.Empty(t, infos)
	for _, info := range infos {
		assert.NotEmpty(t, info.ShopProductList)
	}
}

func TestShopListPermanentBeforeSale(t *testing.T) {
	idx, err := gamedata.NewIndex(gamedata.Tables{Shops: []*gamedata.ShopExcel{
		{ID: 7, CategoryType: model.ShopCategoryGeneral, DisplayOrder: 1, SalePeriodFrom: "2025-01-01 00:00:00", SalePeriodTo: "2025-02-01 00:00:00"},
		{ID: 8, CategoryType: model.ShopCategoryGeneral, DisplayOrder: 2},
		{ID: 7, CategoryType: model.ShopCategoryGeneral, DisplayOrder: 3},
	}})
	require.NoError(t, err)

	shop := NewShopService(idx, logger.NewNoop())
	shop.now = fixedClock(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	infos := shop.List(context.Background(), &model.Account{}, []model.ShopCategoryType{model.ShopCategoryGeneral})
	require.Len(t, infos, 1)
	assert.Equal(t, []int64{8, 7}, shopIDs(infos[0]))
	// 同 ID 的常驻行优先于限时行
	assert.Equal(t, int64(3), infos[0].ShopProductList[1].DisplayOrder)
}
