// Package gacha 招募抽取引擎
package gacha

import (
	"context"
	"fmt"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// guaranteedSRIndex 第 10 抽 (从 0 开始) 保底 SR
const guaranteedSRIndex = 9

// ResultAdder 将抽到的角色落地为新角色或重复转换, 按调用顺序返回结果
type ResultAdder interface {
	AddGachaResult(ctx context.Context, char *gamedata.CharacterExcel) (*model.GachaResult, error)
}

// ResultAdderFunc 函数适配
type ResultAdderFunc func(ctx context.Context, char *gamedata.CharacterExcel) (*model.GachaResult, error)

func (f ResultAdderFunc) AddGachaResult(ctx context.Context, char *gamedata.CharacterExcel) (*model.GachaResult, error) {
	return f(ctx, char)
}

// Request 一次招募
type Request struct {
	Banner    *gamedata.ShopRecruitExcel
	PullCount int64
	// RateUp UP 角色, 无配置时为 nil
	RateUp *gamedata.CharacterExcel
	// GuaranteedCharacterID 一次性指定角色, 0 表示无
	GuaranteedCharacterID int64
	// Override 非空时替换固定概率
	Override OverrideRates
}

// Engine 招募引擎, 只读访问静态数据, 可并发使用
type Engine struct {
	index  *gamedata.Index
	rng    RNG
	logger logger.Logger
}

// NewEngine 创建引擎
func NewEngine(index *gamedata.Index, rng RNG, l logger.Logger) *Engine {
	if rng == nil {
		rng = NewRNG(0)
	}
	return &Engine{
		index:  index,
		rng:    rng,
		logger: l.Named("gacha.engine"),
	}
}

type draw struct {
	id   int64
	tier model.RarityTier
}

// Pull 执行抽取循环, 每次结果立即交给 adder 落地
func (e *Engine) Pull(ctx context.Context, req *Request, adder ResultAdder) ([]*model.GachaResult, error) {
	if req.Banner == nil {
		return nil, errcode.Invariant("gacha: banner is required")
	}
	if req.PullCount < 1 {
		return nil, errcode.InvalidArgument("gacha: pull count %d", req.PullCount)
	}

	category := req.Banner.CategoryType
	pools := e.index.Pools()
	rates := RatesFor(category)
	terminalSSR := RequiresTerminalSSR(category)

	var rateUpID int64
	if req.RateUp != nil && category != model.ShopCategoryNormalGacha {
		rateUpID = req.RateUp.ID
	}

	results := make([]*model.GachaResult, 0, req.PullCount)
	guaranteeUsed := req.GuaranteedCharacterID == 0
	hasSSR, hasSR := false, false

	for i := int64(0); i < req.PullCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			d   draw
			err error
		)
		switch {
		case !guaranteeUsed:
			guaranteeUsed = true
			d = draw{id: req.GuaranteedCharacterID}
			if c, ok := e.index.Character(d.id); ok {
				d.tier = c.Rarity
			}
			e.logger.InfoContext(ctx, "granting guaranteed character",
				"character_id", d.id, "pull", i+1)
			hasSSR = true
		case i == req.PullCount-1 && terminalSSR && !hasSSR:
			d.tier = model.RaritySSR
			d.id, err = e.pick(pools.SSR, rateUpID, "ssr")
			hasSSR = true
		case req.Override != nil:
			d, err = e.drawOverride(req.Override, category, pools, rateUpID, i, hasSR)
		default:
			d, err = e.drawFixed(rates, category, pools, rateUpID, i, hasSR)
		}
		if err != nil {
			return nil, err
		}

		if d.tier == model.RaritySSR {
			hasSSR = true
		}
		if d.tier >= model.RaritySR {
			hasSR = true
		}

		res, err := e.add(ctx, d, adder)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) drawFixed(r Rates, category model.ShopCategoryType, pools *gamedata.RarityPools, rateUpID, i int64, hasSR bool) (draw, error) {
	n := e.rng.Int64N(drawSpace)
	ssr := func(pool []int64, exclude int64, name string) (draw, error) {
		id, err := e.pick(pool, exclude, name)
		return draw{id: id, tier: model.RaritySSR}, err
	}

	switch {
	case n < r.RateUpSSR && category != model.ShopCategoryNormalGacha && rateUpID > 0:
		return draw{id: rateUpID, tier: model.RaritySSR}, nil
	case n < r.RateUpSSR && (category == model.ShopCategoryPickupGacha || category == model.ShopCategoryLimitedGacha):
		return ssr(pools.Fest, 0, "fest")
	case n < r.FesSSR && category == model.ShopCategoryFesGacha:
		return ssr(pools.Fest, 0, "fest")
	case n < r.LimitedSSR && r.LimitedSSR > 0:
		return ssr(pools.Limited, 0, "limited")
	case n < r.PermanentSSR:
		return ssr(pools.SSR, rateUpID, "ssr")
	case n < r.SR || (i == guaranteedSRIndex && !hasSR):
		id, err := e.pick(pools.SR, 0, "sr")
		return draw{id: id, tier: model.RaritySR}, err
	default:
		id, err := e.pick(pools.R, 0, "r")
		return draw{id: id, tier: model.RarityR}, err
	}
}

func (e *Engine) drawOverride(o OverrideRates, category model.ShopCategoryType, pools *gamedata.RarityPools, rateUpID, i int64, hasSR bool) (draw, error) {
	n := float64(e.rng.Int64N(drawSpace))
	ssrThreshold, srThreshold := o.thresholds()

	switch {
	case n < ssrThreshold:
		pool := pools.SSR
		if category != model.ShopCategoryNormalGacha && rateUpID > 0 {
			pool = appendDistinct(pool, rateUpID)
		}
		id, err := e.pick(pool, 0, "ssr")
		return draw{id: id, tier: model.RaritySSR}, err
	case n < srThreshold || (i == guaranteedSRIndex && !hasSR):
		id, err := e.pick(pools.SR, 0, "sr")
		return draw{id: id, tier: model.RaritySR}, err
	default:
		id, err := e.pick(pools.R, 0, "r")
		return draw{id: id, tier: model.RarityR}, err
	}
}

// pick 从池中均匀抽取, exclude 非 0 时排除该角色
func (e *Engine) pick(pool []int64, exclude int64, name string) (int64, error) {
	candidates := pool
	if exclude > 0 {
		candidates = make([]int64, 0, len(pool))
		for _, id := range pool {
			if id != exclude {
				candidates = append(candidates, id)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, errcode.Invariant("gacha: %s pool is empty", name)
	}
	return candidates[e.rng.Int64N(int64(len(candidates)))], nil
}

func (e *Engine) add(ctx context.Context, d draw, adder ResultAdder) (*model.GachaResult, error) {
	char, ok := e.index.Character(d.id)
	if !ok {
		return nil, errcode.Invariant("gacha: character %d not found in static data", d.id)
	}
	res, err := adder.AddGachaResult(ctx, char)
	if err != nil {
		return nil, fmt.Errorf("add gacha result %d: %w", d.id, err)
	}
	res.CharacterID = char.ID
	res.Tier = d.tier
	return res, nil
}

func appendDistinct(pool []int64, id int64) []int64 {
	for _, v := range pool {
		if v == id {
			return pool
		}
	}
	out := make([]int64, 0, len(pool)+1)
	out = append(out, pool...)
	return append(out, id)
}
