package public

import (
	"strconv"
	"strings"

	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetConfig 获取店铺公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	settings, err := h.SettingService.GetStoreSettings(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "config fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"store_name":      h.Config.App.Name,
		"combo_price":     settings.ComboPrice,
		"delivery_window": settings.DeliveryWindow,
		"pickup_enabled":  settings.PickupEnabled,
		"pickup_address":  settings.PickupAddress,
		"currency":        settings.Currency,
	})
}

// GetBanners 获取首页轮播
func (h *Handler) GetBanners(c *gin.Context) {
	banners, err := h.BannerService.ListPublic(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, banners)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListPublic(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	category := strings.TrimSpace(c.Query("category"))
	search := strings.TrimSpace(c.Query("search"))
	comboOnly, _ := strconv.ParseBool(c.DefaultQuery("combo", "false"))

	products, total, err := h.ProductService.ListPublic(category, search, comboOnly, page, pageSize)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProductBySlug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "slug is required", nil)
		return
	}
	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	response.Success(c, product)
}
