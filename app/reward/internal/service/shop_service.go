package service

import (
	"context"
	"time"

	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gamedata"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// SalePeriodLayout 销售时间段格式
const SalePeriodLayout = "2006-01-02 15:04:05"

// ShopService 商店目录
type ShopService struct {
	index  *gamedata.Index
	logger logger.Logger
	now    func() time.Time
}

func NewShopService(index *gamedata.Index, l logger.Logger) *ShopService {
	return &ShopService{
		index:  index,
		logger: l.Named("service.shop"),
		now:    time.Now,
	}
}

// List 按请求的分类顺序返回在售商品, 无商品的分类不返回
func (s *ShopService) List(ctx context.Context, account *model.Account, categories []model.ShopCategoryType) []*model.ShopInfoDB {
	serverTime := account.ServerTime(s.now().UTC())

	// 常驻商品在前, 当前时间段内的限时商品在后, 按 ID 去重保留首次出现
	shops := s.index.Shops()
	available := make([]*gamedata.ShopExcel, 0, len(shops))
	seen := make(map[int64]bool, len(shops))
	add := func(shop *gamedata.ShopExcel) {
		if !seen[shop.ID] {
			seen[shop.ID] = true
			available = append(available, shop)
		}
	}
	for _, shop := range shops {
		if !shop.HasSalePeriod() {
			add(shop)
		}
	}
	for _, shop := range shops {
		if shop.HasSalePeriod() && s.onSale(ctx, shop, serverTime) {
			add(shop)
		}
	}

	infos := make([]*model.ShopInfoDB, 0, len(categories))
	for _, category := range categories {
		var products []*model.ShopProductDB
		for _, shop := range available {
			if shop.CategoryType != category {
				continue
			}
			products = append(products, &model.ShopProductDB{
				ShopExcelID:        shop.ID,
				Category:           shop.CategoryType,
				DisplayOrder:       shop.DisplayOrder,
				PurchaseCountLimit: shop.PurchaseCountLimit,
				ProductType:        model.ShopProductTypeGeneral,
				Price:              s.price(shop),
			})
		}
		if len(products) == 0 {
			continue
		}
		infos = append(infos, &model.ShopInfoDB{
			Category:        category,
			ShopProductList: products,
		})
	}
	return infos
}

// price 商品表中首个被引用的商品的首个消耗数量
func (s *ShopService) price(shop *gamedata.ShopExcel) int64 {
	if len(shop.GoodsID) == 0 {
		return 0
	}
	ids := make(map[int64]bool, len(shop.GoodsID))
	for _, id := range shop.GoodsID {
		ids[id] = true
	}
	for _, goods := range s.index.GoodsRows() {
		if ids[goods.ID] {
			return goods.Price()
		}
	}
	return 0
}

func (s *ShopService) onSale(ctx context.Context, shop *gamedata.ShopExcel, at time.Time) bool {
	if !shop.HasSalePeriod() {
		return true
	}
	if shop.SalePeriodFrom != "" {
		from, err := time.Parse(SalePeriodLayout, shop.SalePeriodFrom)
		if err != nil {
			s.logger.WarnContext(ctx, "invalid sale period", "shop_id", shop.ID, "from", shop.SalePeriodFrom, "error", err)
			return false
		}
		if at.Before(from) {
			return false
		}
	}
	if shop.SalePeriodTo != "" {
		to, err := time.Parse(SalePeriodLayout, shop.SalePeriodTo)
		if err != nil {
			s.logger.WarnContext(ctx, "invalid sale period", "shop_id", shop.ID, "to", shop.SalePeriodTo, "error", err)
			return false
		}
		if at.After(to) {
			return false
		}
	}
	return true
}
