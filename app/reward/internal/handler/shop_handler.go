package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/errcode"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/gacha"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/model"
	"github.com/lk2023060901/xdooria-reward/app/reward/internal/service"
	"github.com/lk2023060901/xdooria-reward/pkg/web"
)

// ShopListRequest 商店列表请求, 分类使用名称
type ShopListRequest struct {
	CategoryList []string `json:"category_list"`
}

// BuyGachaRequest 招募购买请求
type BuyGachaRequest struct {
	ShopUniqueID  int64               `json:"shop_unique_id" binding:"required"`
	GoodsID       int64               `json:"goods_id"`
	Cost          []model.Parcel      `json:"cost"`
	OverrideRates gacha.OverrideRates `json:"override_rates"`
}

// ShopList 按分类列出在售商品
func (h *Handler) ShopList(c *gin.Context) {
	var req ShopListRequest
	if !web.BindJSON(c, &req) {
		return
	}

	categories := make([]model.ShopCategoryType, 0, len(req.CategoryList))
	for _, name := range req.CategoryList {
		cat, err := model.ParseShopCategory(name)
		if err != nil {
			h.fail(c, errcode.InvalidArgument("unknown shop category %q", name))
			return
		}
		categories = append(categories, cat)
	}

	infos := h.shop.List(c.Request.Context(), accountFrom(c), categories)
	if infos == nil {
		infos = []*model.ShopInfoDB{}
	}
	web.Success(c, gin.H{"shop_infos": infos})
}

// BuyGacha 购买招募
func (h *Handler) BuyGacha(c *gin.Context) {
	var req BuyGachaRequest
	if !web.BindJSON(c, &req) {
		return
	}

	res, err := h.gacha.BuyGacha(c.Request.Context(), accountFrom(c), &service.BuyGachaRequest{
		ShopUniqueID:  req.ShopUniqueID,
		GoodsID:       req.GoodsID,
		Cost:          req.Cost,
		OverrideRates: req.OverrideRates,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}
