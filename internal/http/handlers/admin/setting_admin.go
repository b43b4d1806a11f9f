package admin

import (
	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// GetStoreSettings 获取店铺设置
func (h *Handler) GetStoreSettings(c *gin.Context) {
	settings, err := h.SettingService.GetStoreSettings(c.Request.Context())
	if err != nil {
		respondAdminError(c, err, "settings fetch failed")
		return
	}
	response.Success(c, settings)
}

// UpdateStoreSettings 更新店铺设置
func (h *Handler) UpdateStoreSettings(c *gin.Context) {
	var req service.StoreSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	settings, err := h.SettingService.UpdateStoreSettings(c.Request.Context(), req)
	if err != nil {
		respondAdminError(c, err, "settings update failed")
		return
	}
	handlershared.RequestLog(c).Infow("admin_store_settings_updated", "admin", c.GetString(ContextKeyUsername))
	response.Success(c, settings)
}
