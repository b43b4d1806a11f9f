package service

import (
	"strings"

	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/queue"

	"github.com/hibiken/asynq"
)

// OrderMailQueue 订单邮件任务入队接口，由 queue.Client 实现
type OrderMailQueue interface {
	EnqueueOrderConfirmationEmail(payload queue.OrderConfirmationEmailPayload, opts ...asynq.Option) error
	EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, opts ...asynq.Option) error
}

// enqueueOrderConfirmationIfEligible 订单缺少收件邮箱时跳过。
// 返回值 skipped 表示任务被跳过。
func enqueueOrderConfirmationIfEligible(mailQueue OrderMailQueue, order *models.Order) (skipped bool, err error) {
	if mailQueue == nil || order == nil || order.ID == 0 {
		return true, nil
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		return true, nil
	}
	if err := mailQueue.EnqueueOrderConfirmationEmail(queue.OrderConfirmationEmailPayload{OrderID: order.ID}); err != nil {
		return false, err
	}
	return false, nil
}

// enqueueOrderStatusEmailIfEligible 同上，用于后台变更订单状态后通知顾客
func enqueueOrderStatusEmailIfEligible(mailQueue OrderMailQueue, order *models.Order, status string) (skipped bool, err error) {
	if mailQueue == nil || order == nil || order.ID == 0 {
		return true, nil
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		return true, nil
	}
	if err := mailQueue.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: order.ID,
		Status:  strings.TrimSpace(status),
	}); err != nil {
		return false, err
	}
	return false, nil
}
