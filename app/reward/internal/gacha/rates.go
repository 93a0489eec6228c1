package gacha

import (
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
)

// drawSpace 抽取随机数范围 [0, 1000)
const drawSpace = 1000

// Rates 累积阈值, 依次比较, 未命中任何阈值为 R
type Rates struct {
	RateUpSSR    int64
	FesSSR       int64
	LimitedSSR   int64
	PermanentSSR int64
	SR           int64
}

// RatesFor 卡池分类对应的固定概率
func RatesFor(category model.ShopCategoryType) Rates {
	switch category {
	case model.ShopCategoryPickupGacha, model.ShopCategorySelectPickupGacha:
		return Rates{RateUpSSR: 7, PermanentSSR: 30, SR: 215}
	case model.ShopCategoryLimitedGacha:
		return Rates{RateUpSSR: 7, LimitedSSR: 14, PermanentSSR: 30, SR: 215}
	case model.ShopCategoryFesGacha:
		return Rates{RateUpSSR: 7, FesSSR: 20, PermanentSSR: 60, SR: 245}
	default:
		return Rates{PermanentSSR: 30, SR: 215}
	}
}

// RequiresTerminalSSR 最后一抽保底 SSR 的分类
func RequiresTerminalSSR(category model.ShopCategoryType) bool {
	return category == model.ShopCategoryTicketGacha || category == model.ShopCategoryGlobalSpecialGacha
}

// OverrideRates 按稀有度的百分比概率, 覆盖本次请求的固定概率
type OverrideRates map[model.RarityTier]float64

// thresholds 换算为 0..999 上的累积阈值
func (o OverrideRates) thresholds() (ssr, sr float64) {
	ssr = o[model.RaritySSR] * 10
	sr = ssr + o[model.RaritySR]*10
	return ssr, sr
}
