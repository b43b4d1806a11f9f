package admin

import (
	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// GetShippingRules 获取运费规则
func (h *Handler) GetShippingRules(c *gin.Context) {
	rules, err := h.ShippingRuleService.List()
	if err != nil {
		respondAdminError(c, err, "shipping rule fetch failed")
		return
	}
	response.Success(c, rules)
}

// CreateShippingRule 创建运费规则
func (h *Handler) CreateShippingRule(c *gin.Context) {
	var req service.ShippingRuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	rule, err := h.ShippingRuleService.Create(req)
	if err != nil {
		respondAdminError(c, err, "shipping rule create failed")
		return
	}
	response.Success(c, rule)
}

// UpdateShippingRule 更新运费规则
func (h *Handler) UpdateShippingRule(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ShippingRuleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	rule, err := h.ShippingRuleService.Update(id, req)
	if err != nil {
		respondAdminError(c, err, "shipping rule update failed")
		return
	}
	response.Success(c, rule)
}

// DeleteShippingRule 删除运费规则
func (h *Handler) DeleteShippingRule(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.ShippingRuleService.Delete(id); err != nil {
		respondAdminError(c, err, "shipping rule delete failed")
		return
	}
	response.Success(c, nil)
}
