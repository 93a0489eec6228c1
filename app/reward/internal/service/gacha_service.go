package service

import (
	"context"
	"sync/atomic"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/event"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/metrics"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/repository"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// BuyGachaRequest 招募购买请求
type BuyGachaRequest struct {
	ShopUniqueID int64
	GoodsID      int64
	// Cost 非空时替代商品定义的消耗
	Cost          []model.Parcel
	OverrideRates gacha.OverrideRates
}

// BuyGachaResult 招募结果
type BuyGachaResult struct {
	PullCount       int64                  `json:"pull_count"`
	GachaResults    []*model.GachaResult   `json:"gacha_results"`
	AcquiredItems   []*model.ItemDB        `json:"acquired_items"`
	ConsumedItems   []*model.ItemDB        `json:"consumed_items"`
	AccountCurrency *model.AccountCurrency `json:"account_currency"`
}

// GachaService 招募服务
type GachaService struct {
	cfg           *GachaConfig
	index         *gamedata.Index
	engine        *gacha.Engine
	store         repository.Store
	guarantees    repository.GuaranteeStore
	parcels       *ParcelService
	publisher     event.Publisher
	metrics       *metrics.RewardMetrics
	logger        logger.Logger
	allowOverride atomic.Bool
}

func NewGachaService(
	cfg *GachaConfig,
	index *gamedata.Index,
	engine *gacha.Engine,
	store repository.Store,
	guarantees repository.GuaranteeStore,
	parcels *ParcelService,
	publisher event.Publisher,
	m *metrics.RewardMetrics,
	l logger.Logger,
) *GachaService {
	if cfg == nil {
		cfg = DefaultGachaConfig()
	}
	s := &GachaService{
		cfg:        cfg,
		index:      index,
		engine:     engine,
		store:      store,
		guarantees: guarantees,
		parcels:    parcels,
		publisher:  publisher,
		metrics:    m,
		logger:     l.Named("service.gacha"),
	}
	s.allowOverride.Store(cfg.AllowOverrideRates)
	return s
}

// SetAllowOverrideRates 热更新自定义概率开关
func (s *GachaService) SetAllowOverrideRates(allow bool) {
	if s.allowOverride.Swap(allow) != allow {
		s.logger.Info("override rates switch changed", "allow", allow)
	}
}

// BuyGacha 扣除消耗并执行招募, 全部在一个账号事务中完成
func (s *GachaService) BuyGacha(ctx context.Context, account *model.Account, req *BuyGachaRequest) (*BuyGachaResult, error) {
	var (
		res       *BuyGachaResult
		category  model.ShopCategoryType
		guarantee int64
	)

	err := s.store.InAccountTx(ctx, account.ServerID, func(ctx context.Context, l repository.Ledger) error {
		// 1. 计算消耗与抽数
		cost, err := s.resolveCost(req)
		if err != nil {
			return err
		}
		pullCount := gacha.PullCount(cost, s.cfg.UnitPrice, s.itemPullCount)

		// 2. 扣除消耗
		consumed, err := s.parcels.Resolve(ctx, l, cost, ModeConsume)
		if err != nil {
			return err
		}

		// 3. 卡池与 UP 角色
		banner, err := s.resolveBanner(ctx, req.ShopUniqueID)
		if err != nil {
			return err
		}
		category = banner.CategoryType

		pull := &gacha.Request{
			Banner:    banner,
			PullCount: pullCount,
			RateUp:    s.resolveRateUp(ctx, banner, req.ShopUniqueID),
			Override:  s.resolveOverride(ctx, account.ServerID, req.OverrideRates),
		}

		// 4. 一次性指定角色
		guarantee, err = s.guarantees.Take(ctx, account.ServerID)
		if err != nil {
			return err
		}
		pull.GuaranteedCharacterID = guarantee

		// 5. 抽取
		acquired := model.NewParcelResultDB()
		results, err := s.engine.Pull(ctx, pull, gacha.ResultAdderFunc(s.parcels.ResultAdder(l, acquired)))
		if err != nil {
			return err
		}

		// 6. 招募点数
		if banner.RecruitCoinID > 0 {
			if _, err := s.parcels.AddStack(ctx, l, model.ParcelTypeItem, banner.RecruitCoinID, pullCount, acquired); err != nil {
				return err
			}
		}

		if err := s.parcels.Snapshot(ctx, l, acquired); err != nil {
			return err
		}

		res = &BuyGachaResult{
			PullCount:       pullCount,
			GachaResults:    results,
			AcquiredItems:   acquired.Items,
			ConsumedItems:   consumed.Items,
			AccountCurrency: acquired.AccountCurrency,
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordGachaPurchase(false)
		// 数据缺陷导致的失败不恢复, 避免账号持续失败
		if guarantee != 0 && !errcode.Is(err, errcode.ErrInvariantViolation) {
			s.restoreGuarantee(ctx, account.ServerID, guarantee)
		}
		return nil, err
	}

	s.metrics.RecordGachaPurchase(true)
	for _, r := range res.GachaResults {
		s.metrics.RecordGachaPull(category.String(), r.Tier.String())
	}

	s.logger.InfoContext(ctx, "gacha purchased",
		"account_id", account.ServerID,
		"shop_id", req.ShopUniqueID,
		"category", category,
		"pulls", res.PullCount,
	)
	s.publish(ctx, &event.Event{
		Type:      event.TypeGachaPurchased,
		AccountID: account.ServerID,
		Payload:   res.GachaResults,
	})
	return res, nil
}

// SetGuarantee 设置下次招募的指定角色, 仅限已上线角色
func (s *GachaService) SetGuarantee(ctx context.Context, accountID, characterID int64) error {
	char, ok := s.index.Character(characterID)
	if !ok || !char.Released() {
		return errcode.DataNotFound("character %d not found", characterID)
	}
	if err := s.guarantees.Set(ctx, accountID, char.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "gacha guarantee set", "account_id", accountID, "character_id", char.ID)
	return nil
}

// ClearGuarantee 清除指定角色
func (s *GachaService) ClearGuarantee(ctx context.Context, accountID int64) error {
	return s.guarantees.Clear(ctx, accountID)
}

// Guarantee 当前指定角色, 0 表示未设置
func (s *GachaService) Guarantee(ctx context.Context, accountID int64) (int64, error) {
	return s.guarantees.Peek(ctx, accountID)
}

func (s *GachaService) resolveCost(req *BuyGachaRequest) ([]model.Parcel, error) {
	if len(req.Cost) > 0 {
		return req.Cost, nil
	}
	if req.GoodsID == 0 {
		return nil, errcode.InvalidArgument("either cost or goods_id is required")
	}
	goods, ok := s.index.Goods(req.GoodsID)
	if !ok {
		return nil, errcode.DataNotFound("goods %d not found", req.GoodsID)
	}
	return goods.Consume, nil
}

func (s *GachaService) itemPullCount(itemID int64) int64 {
	if item, ok := s.index.Item(itemID); ok {
		return item.RecruitPullCount
	}
	return 0
}

func (s *GachaService) resolveBanner(ctx context.Context, shopID int64) (*gamedata.ShopRecruitExcel, error) {
	if banner, ok := s.index.Banner(shopID); ok {
		return banner, nil
	}

	available := s.index.BannerIDs()
	s.logger.WarnContext(ctx, "banner not found, falling back to normal gacha",
		"shop_id", shopID,
		"available", available,
	)
	banner, ok := s.index.FirstBannerOf(model.ShopCategoryNormalGacha)
	if !ok {
		return nil, errcode.DataNotFound("shop recruitment %d not found, available shops: %v", shopID, available)
	}
	return banner, nil
}

func (s *GachaService) resolveRateUp(ctx context.Context, banner *gamedata.ShopRecruitExcel, shopID int64) *gamedata.CharacterExcel {
	if banner.CategoryType == model.ShopCategoryNormalGacha {
		return nil
	}
	bonus, ok := s.index.PickupBonusByShopID(shopID)
	if !ok {
		s.logger.DebugContext(ctx, "no pickup bonus for banner", "shop_id", shopID)
		return nil
	}
	char, ok := s.index.Character(bonus.PickupCharacterID)
	if !ok {
		s.logger.WarnContext(ctx, "pickup character not found",
			"shop_id", shopID,
			"character_id", bonus.PickupCharacterID,
		)
		return nil
	}
	return char
}

func (s *GachaService) resolveOverride(ctx context.Context, accountID int64, rates gacha.OverrideRates) gacha.OverrideRates {
	if len(rates) == 0 {
		return nil
	}
	if !s.allowOverride.Load() {
		s.logger.WarnContext(ctx, "override rates ignored", "account_id", accountID)
		return nil
	}
	return rates
}

func (s *GachaService) restoreGuarantee(ctx context.Context, accountID, characterID int64) {
	if err := s.guarantees.Set(context.WithoutCancel(ctx), accountID, characterID); err != nil {
		s.logger.ErrorContext(ctx, "gacha guarantee lost after failed purchase",
			"account_id", accountID,
			"character_id", characterID,
			"error", err,
		)
	}
}

func (s *GachaService) publish(ctx context.Context, e *event.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", e.Type, "error", err)
	}
}
