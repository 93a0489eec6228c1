package service

import (
	"context"
	"testing"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func characterIDs(results []*model.GachaResult) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.CharacterID
	}
	return ids
}

func TestBuyGachaWithGoodsCost(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	h.grant(t, currency(4, 1200))

	res, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{ShopUniqueID: 100, GoodsID: 500})
	require.NoError(t, err)

	// 1200 / 120 = 10 抽, 第 10 抽保底 SR
	assert.Equal(t, int64(10), res.PullCount)
	require.Len(t, res.GachaResults, 10)
	for i, r := range res.GachaResults[:9] {
		assert.Equal(t, int64(30000), r.CharacterID, "pull %d", i)
		assert.Equal(t, model.RarityR, r.Tier)
	}
	assert.Equal(t, int64(20000), res.GachaResults[9].CharacterID)
	assert.Equal(t, model.RaritySR, res.GachaResults[9].Tier)

	// 首次获得为新角色, 之后转换为神名文字
	assert.NotNil(t, res.GachaResults[0].Character)
	assert.Nil(t, res.GachaResults[0].Stone)
	assert.NotNil(t, res.GachaResults[1].Stone)

	assert.Zero(t, res.AccountCurrency.Balances[4])
	assert.Zero(t, h.balance(t, 4))
	assert.Empty(t, res.ConsumedItems)
	require.Len(t, res.AcquiredItems, 1)
	assert.Equal(t, int64(9200), res.AcquiredItems[0].UniqueID)
	assert.Equal(t, int64(8*50), res.AcquiredItems[0].StackCount)

	assert.Equal(t, []event.Type{event.TypeGachaPurchased}, h.events.types())
}

func TestBuyGachaPickupWithRecruitCoin(t *testing.T) {
	h := newHarness(t, constRNG{draw: 0})
	h.grant(t, currency(4, 1200))

	res, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{
		ShopUniqueID: 101,
		Cost:         []model.Parcel{currency(4, 1200)},
	})
	require.NoError(t, err)

	// 所有抽取命中 UP 角色
	for _, id := range characterIDs(res.GachaResults) {
		assert.Equal(t, int64(10001), id)
	}
	assert.Equal(t, int64(10), h.stack(t, model.ParcelTypeItem, 1))
	assert.Equal(t, int64(9*50), h.stack(t, model.ParcelTypeItem, 9001))

	var coin *model.ItemDB
	for _, it := range res.AcquiredItems {
		if it.UniqueID == 1 {
			require.Nil(t, coin, "recruit coin must appear once")
			coin = it
		}
	}
	require.NotNil(t, coin)
	assert.Equal(t, int64(10), coin.StackCount)
}

func TestBuyGachaTicketCost(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	h.grant(t, model.Parcel{Type: model.ParcelTypeItem, ID: 2, Amount: 1})

	res, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{
		ShopUniqueID: 100,
		Cost:         []model.Parcel{{Type: model.ParcelTypeItem, ID: 2, Amount: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.PullCount)
	require.Len(t, res.ConsumedItems, 1)
	assert.Zero(t, res.ConsumedItems[0].StackCount)
}

func TestBuyGachaSinglePull(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	h.grant(t, currency(4, 120))

	res, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{
		ShopUniqueID: 100,
		Cost:         []model.Parcel{currency(4, 60)},
	})
	require.NoError(t, err)
	// 不足一抽的价格按 1 抽计算
	assert.Equal(t, int64(1), res.PullCount)
	assert.Equal(t, int64(60), h.balance(t, 4))
}

func TestBuyGachaFallsBackToNormalBanner(t *testing.T) {
	h := newHarness(t, constRNG{draw: 0})
	h.grant(t, currency(4, 120))

	res, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{
		ShopUniqueID: 999,
		Cost:         []model.Parcel{currency(4, 120)},
	})
	require.NoError(t, err)
	require.Len(t, res.GachaResults, 1)
	// 常驻池无 UP, 取常驻 SSR
	assert.Equal(t, int64(10000), res.GachaResults[0].CharacterID)
	assert.Equal(t, model.RaritySSR, res.GachaResults[0].Tier)
}

func TestBuyGachaInsufficientLeavesLedgerUntouched(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	h.grant(t, currency(4, 100))

	_, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{ShopUniqueID: 100, GoodsID: 500})
	assert.True(t, errcode.Is(err, errcode.ErrInsufficientResources))

	chars, err := h.store.Characters(context.Background(), testAccountID)
	require.NoError(t, err)
	assert.Empty(t, chars)
	assert.Equal(t, int64(100), h.balance(t, 4))
	assert.Empty(t, h.events.types())
}

func TestBuyGachaUnknownGoods(t *testing.T) {
	h := newHarness(t, constRNG{})
	_, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{ShopUniqueID: 100, GoodsID: 4242})
	assert.True(t, errcode.Is(err, errcode.ErrDataNotFound))
}

func TestBuyGachaRequiresCost(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})

	_, err := h.gacha.BuyGacha(context.Background(), h.account, &BuyGachaRequest{ShopUniqueID: 100})
	assert.True(t, errcode.Is(err, errcode.ErrInvalidArgument), "got %v", err)

	chars, err := h.store.Characters(context.Background(), testAccountID)
	require.NoError(t, err)
	assert.Empty(t, chars)
	assert.Empty(t, h.events.types())
}

func TestBuyGachaGuarantee(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	ctx := context.Background()
	h.grant(t, currency(4, 2400))

	err := h.gacha.SetGuarantee(ctx, testAccountID, 4242)
	assert.True(t, errcode.Is(err, errcode.ErrDataNotFound))

	// 未上线与不可操作角色不能指定
	for _, id := range []int64{10004, 10005} {
		err = h.gacha.SetGuarantee(ctx, testAccountID, id)
		assert.True(t, errcode.Is(err, errcode.ErrDataNotFound), "character %d", id)
	}
	id, err := h.gacha.Guarantee(ctx, testAccountID)
	require.NoError(t, err)
	assert.Zero(t, id)

	require.NoError(t, h.gacha.SetGuarantee(ctx, testAccountID, 10003))
	id, err = h.gacha.Guarantee(ctx, testAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(10003), id)

	res, err := h.gacha.BuyGacha(ctx, h.account, &BuyGachaRequest{ShopUniqueID: 100, GoodsID: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(10003), res.GachaResults[0].CharacterID)
	assert.Equal(t, model.RaritySSR, res.GachaResults[0].Tier)

	// 指定角色只生效一次
	id, err = h.gacha.Guarantee(ctx, testAccountID)
	require.NoError(t, err)
	assert.Zero(t, id)

	res, err = h.gacha.BuyGacha(ctx, h.account, &BuyGachaRequest{ShopUniqueID: 100, GoodsID: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), res.GachaResults[0].CharacterID)
}

func TestBuyGachaFailureKeepsGuarantee(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	ctx := context.Background()

	require.NoError(t, h.gacha.SetGuarantee(ctx, testAccountID, 10003))
	_, err := h.gacha.BuyGacha(ctx, h.account, &BuyGachaRequest{ShopUniqueID: 100, GoodsID: 500})
	require.Error(t, err)

	id, err := h.gacha.Guarantee(ctx, testAccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(10003), id)

	require.NoError(t, h.gacha.ClearGuarantee(ctx, testAccountID))
	id, err = h.gacha.Guarantee(ctx, testAccountID)
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestBuyGachaOverrideRates(t *testing.T) {
	h := newHarness(t, constRNG{draw: 999})
	ctx := context.Background()
	h.grant(t, currency(4, 240))

	req := &BuyGachaRequest{
		ShopUniqueID:  100,
		Cost:          []model.Parcel{currency(4, 120)},
		OverrideRates: gacha.OverrideRates{model.RaritySSR: 100},
	}

	// 未开启时忽略
	res, err := h.gacha.BuyGacha(ctx, h.account, req)
	require.NoError(t, err)
	assert.Equal(t, model.RarityR, res.GachaResults[0].Tier)

	h.gacha.SetAllowOverrideRates(true)
	res, err = h.gacha.BuyGacha(ctx, h.account, req)
	require.NoError(t, err)
	assert.Equal(t, model.RaritySSR, res.GachaResults[0].Tier)
	assert.Equal(t, int64(10000), res.GachaResults[0].CharacterID)
}
