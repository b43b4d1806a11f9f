package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/metrics"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/provider"
	"github.com/aurelia-jewelry/internal/queue"
	"github.com/aurelia-jewelry/internal/repository"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/hibiken/asynq"
)

// OrderMailer 订单邮件发送能力
type OrderMailer interface {
	SendOrderConfirmation(order *models.Order) error
	SendOrderStatusEmail(order *models.Order, status string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	orders  repository.OrderRepository
	mailer  OrderMailer
	metrics *metrics.Store
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	var mailer OrderMailer
	if c.EmailService != nil {
		mailer = c.EmailService
	}
	return newConsumer(c.OrderRepo, mailer, c.Metrics)
}

func newConsumer(orders repository.OrderRepository, mailer OrderMailer, m *metrics.Store) *Consumer {
	return &Consumer{orders: orders, mailer: mailer, metrics: m}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmationEmail, c.handleOrderConfirmationEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleOrderConfirmationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmation_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmation_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	order, err := c.loadOrder("worker_order_confirmation_email", payload.OrderID)
	if err != nil || order == nil {
		return err
	}
	if c.mailer == nil {
		logger.Warnw("worker_order_confirmation_email_skip_mailer_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	err = c.mailer.SendOrderConfirmation(order)
	c.metrics.IncEmail(emailOutcome(err))
	if err != nil {
		logger.Warnw("worker_order_confirmation_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", order.CustomerEmail,
			"error", err,
		)
		return retryableEmailError(err)
	}
	logger.Infow("worker_order_confirmation_email_sent", "order_id", order.ID, "order_no", order.OrderNo)
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	order, err := c.loadOrder("worker_order_status_email", payload.OrderID)
	if err != nil || order == nil {
		return err
	}
	if c.mailer == nil {
		logger.Warnw("worker_order_status_email_skip_mailer_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	if err := c.mailer.SendOrderStatusEmail(order, status); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", order.CustomerEmail,
			"status", status,
			"error", err,
		)
		return retryableEmailError(err)
	}
	return nil
}

// loadOrder 返回 nil, nil 表示任务可直接丢弃
func (c *Consumer) loadOrder(event string, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		logger.Debugw(event+"_skip_invalid_payload", "order_id", orderID)
		return nil, nil
	}
	if c.orders == nil {
		logger.Warnw(event+"_skip_repo_nil", "order_id", orderID)
		return nil, nil
	}
	order, err := c.orders.GetByID(orderID)
	if err != nil {
		logger.Warnw(event+"_fetch_order_failed", "order_id", orderID, "error", err)
		return nil, err
	}
	if order == nil {
		logger.Debugw(event+"_skip_order_not_found", "order_id", orderID)
		return nil, nil
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		logger.Debugw(event+"_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil, nil
	}
	return order, nil
}

// retryableEmailError 配置缺失与收件人被拒不再重试
func retryableEmailError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrInvalidEmail):
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

func emailOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, service.ErrEmailServiceDisabled):
		return metrics.OutcomeIgnored
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmailRecipientRejected):
		return metrics.OutcomeValidation
	}
	return metrics.OutcomeExternal
}
