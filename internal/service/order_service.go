package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

// allowedTransitions 订单只能由待处理进入终态
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusCompleted: true,
		constants.OrderStatusCancelled: true,
	},
}

// OrderService 后台订单服务
type OrderService struct {
	orderRepo repository.OrderRepository
	mailQueue OrderMailQueue
	now       func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, mailQueue OrderMailQueue) *OrderService {
	return &OrderService{orderRepo: orderRepo, mailQueue: mailQueue, now: time.Now}
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if status := strings.TrimSpace(filter.Status); status != "" && !isKnownOrderStatus(status) {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list orders: %v", ErrPersistence, err)
	}
	return orders, total, nil
}

// GetOrderForAdmin 管理端订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: get order: %v", ErrPersistence, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateOrderStatus 后台变更订单状态，仅允许 pending -> completed|cancelled
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	targetStatus = strings.ToLower(strings.TrimSpace(targetStatus))
	order, err := s.GetOrderForAdmin(orderID)
	if err != nil {
		return nil, err
	}
	if !isTransitionAllowed(order.Status, targetStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, targetStatus)
	}

	updated, err := s.orderRepo.TransitionStatus(order.ID, order.Status, targetStatus, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: update order status: %v", ErrPersistence, err)
	}
	if !updated {
		// 并发修改导致状态已变化
		return nil, fmt.Errorf("%w: order %d is no longer %s", ErrOrderStatusInvalid, order.ID, order.Status)
	}
	logger.Infow("order_status_updated", "order_id", order.ID, "order_no", order.OrderNo, "from", order.Status, "to", targetStatus)

	fresh, err := s.GetOrderForAdmin(order.ID)
	if err != nil {
		return nil, err
	}
	if _, err := enqueueOrderStatusEmailIfEligible(s.mailQueue, fresh, targetStatus); err != nil {
		logger.Warnw("order_status_email_enqueue_failed", "order_id", fresh.ID, "status", targetStatus, "error", err)
	}
	return fresh, nil
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending, constants.OrderStatusCompleted, constants.OrderStatusCancelled:
		return true
	}
	return false
}
