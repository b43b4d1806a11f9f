package public

import (
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// QuoteRequest 报价请求
type QuoteRequest struct {
	Subtotal   models.Money `json:"subtotal"`
	CouponCode string       `json:"coupon_code"`
	IsPickup   bool         `json:"is_pickup"`
}

// QuoteResponse 报价结果
type QuoteResponse struct {
	Subtotal     models.Money `json:"subtotal"`
	Discount     models.Money `json:"discount"`
	ShippingCost models.Money `json:"shipping_cost"`
	Total        models.Money `json:"total"`
	CouponCode   string       `json:"coupon_code,omitempty"`
}

// QuotePricing 计算折扣、运费与总额
func (h *Handler) QuotePricing(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	quote, err := h.PricingService.ComputeTotal(c.Request.Context(), service.QuoteInput{
		Subtotal:   req.Subtotal.Decimal,
		CouponCode: req.CouponCode,
		IsPickup:   req.IsPickup,
	})
	if err != nil {
		respondPricingError(c, err)
		return
	}
	response.Success(c, QuoteResponse{
		Subtotal:     models.NewMoneyFromDecimal(quote.Subtotal),
		Discount:     models.NewMoneyFromDecimal(quote.Discount),
		ShippingCost: models.NewMoneyFromDecimal(quote.ShippingCost),
		Total:        models.NewMoneyFromDecimal(quote.Total),
		CouponCode:   quote.CouponCode,
	})
}

// CouponValidateRequest 优惠码校验请求
type CouponValidateRequest struct {
	Code     string       `json:"code" binding:"required"`
	Subtotal models.Money `json:"subtotal"`
}

// ValidateCoupon 校验优惠码
func (h *Handler) ValidateCoupon(c *gin.Context) {
	var req CouponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	check, err := h.PricingService.ValidateCoupon(c.Request.Context(), req.Code, req.Subtotal.Decimal)
	if err != nil {
		respondPricingError(c, err)
		return
	}
	response.Success(c, gin.H{
		"code":           check.Coupon.Code,
		"discount_type":  check.Coupon.DiscountType,
		"discount_value": check.Coupon.DiscountValue,
		"discount":       models.NewMoneyFromDecimal(check.Discount),
	})
}
