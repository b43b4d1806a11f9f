package admin

import (
	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminCategories 获取分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListAdmin()
	if err != nil {
		respondAdminError(c, err, "category fetch failed")
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	category, err := h.CategoryService.Create(c.Request.Context(), req)
	if err != nil {
		respondAdminError(c, err, "category create failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	category, err := h.CategoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondAdminError(c, err, "category update failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CategoryService.Delete(c.Request.Context(), id); err != nil {
		respondAdminError(c, err, "category delete failed")
		return
	}
	response.Success(c, nil)
}
