package admin

import (
	"strings"
	"time"

	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminOrders 获取订单列表
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(c.Query("status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		CustomerEmail: strings.TrimSpace(c.Query("customer_email")),
	}
	var err error
	if filter.CreatedFrom, err = parseTimeNullable(c.Query("created_from")); err != nil {
		respondError(c, response.CodeBadRequest, "created_from must be RFC3339", nil)
		return
	}
	if filter.CreatedTo, err = parseTimeNullable(c.Query("created_to")); err != nil {
		respondError(c, response.CodeBadRequest, "created_to must be RFC3339", nil)
		return
	}

	orders, total, err := h.OrderService.ListOrdersForAdmin(filter)
	if err != nil {
		respondAdminError(c, err, "order fetch failed")
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetAdminOrder 获取订单详情
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderForAdmin(id)
	if err != nil {
		respondAdminError(c, err, "order fetch failed")
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := handlershared.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "status is required", nil)
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(id, req.Status)
	if err != nil {
		respondAdminError(c, err, "order status update failed")
		return
	}
	handlershared.RequestLog(c).Infow("admin_order_status_updated",
		"admin", c.GetString(ContextKeyUsername),
		"order_id", order.ID,
		"status", order.Status,
	)
	response.Success(c, order)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
