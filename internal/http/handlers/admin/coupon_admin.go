package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/repository"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminCoupons 获取优惠码列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "is_active is invalid", nil)
			return
		}
		filter.IsActive = &parsed
	}
	coupons, total, err := h.CouponAdminService.List(filter)
	if err != nil {
		respondAdminError(c, err, "coupon fetch failed")
		return
	}
	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// CreateCoupon 创建优惠码
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req service.CouponInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	coupon, err := h.CouponAdminService.Create(req)
	if err != nil {
		respondAdminError(c, err, "coupon create failed")
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 更新优惠码
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.CouponInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	coupon, err := h.CouponAdminService.Update(id, req)
	if err != nil {
		respondAdminError(c, err, "coupon update failed")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠码
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CouponAdminService.Delete(id); err != nil {
		respondAdminError(c, err, "coupon delete failed")
		return
	}
	response.Success(c, nil)
}
