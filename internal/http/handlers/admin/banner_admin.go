package admin

import (
	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminBanners 获取后台 Banner 列表
func (h *Handler) GetAdminBanners(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	banners, total, err := h.BannerService.ListAdmin(page, pageSize)
	if err != nil {
		respondAdminError(c, err, "banner fetch failed")
		return
	}
	response.SuccessWithPage(c, banners, response.NewPagination(page, pageSize, total))
}

// CreateBanner 创建 Banner
func (h *Handler) CreateBanner(c *gin.Context) {
	var req service.BannerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	banner, err := h.BannerService.Create(c.Request.Context(), req)
	if err != nil {
		respondAdminError(c, err, "banner create failed")
		return
	}
	response.Success(c, banner)
}

// UpdateBanner 更新 Banner
func (h *Handler) UpdateBanner(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.BannerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	banner, err := h.BannerService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondAdminError(c, err, "banner update failed")
		return
	}
	response.Success(c, banner)
}

// DeleteBanner 删除 Banner
func (h *Handler) DeleteBanner(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.BannerService.Delete(c.Request.Context(), id); err != nil {
		respondAdminError(c, err, "banner delete failed")
		return
	}
	response.Success(c, nil)
}
