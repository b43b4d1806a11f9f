package public

import (
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCheckout 创建 Stripe Checkout 会话
func (h *Handler) CreateCheckout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	session, err := h.CheckoutService.Checkout(c.Request.Context(), req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, session)
}
