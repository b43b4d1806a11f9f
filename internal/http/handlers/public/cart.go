package public

import (
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// ComboRequest 三件套请求，product_ids 与 picks 二选一
type ComboRequest struct {
	ProductIDs []uint                   `json:"product_ids"`
	Picks      []service.ComboPickInput `json:"picks"`
}

// BuildCombo 以当前组合价生成三件套购物车行
func (h *Handler) BuildCombo(c *gin.Context) {
	var req ComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	picks := req.Picks
	if len(picks) == 0 {
		picks = make([]service.ComboPickInput, 0, len(req.ProductIDs))
		for _, id := range req.ProductIDs {
			picks = append(picks, service.ComboPickInput{ProductID: id})
		}
	}
	items, err := h.CartService.BuildCombo(c.Request.Context(), picks)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// CartSummaryRequest 购物车汇总请求
type CartSummaryRequest struct {
	Items []service.CartLineInput `json:"items"`
}

// SummarizeCart 按服务端价格重算购物车
func (h *Handler) SummarizeCart(c *gin.Context) {
	var req CartSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", nil)
		return
	}
	summary, err := h.CartService.Summarize(c.Request.Context(), req.Items)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, summary)
}
