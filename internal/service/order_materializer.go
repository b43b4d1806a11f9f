package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/metrics"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/payment/stripe"
	"github.com/aurelia-jewelry/internal/repository"

	"github.com/shopspring/decimal"
)

// WebhookVerifier 校验签名并解析支付事件
type WebhookVerifier interface {
	VerifyWebhook(headers map[string]string, body []byte, now time.Time) (*stripe.WebhookEvent, error)
}

// WebhookResult webhook 处理结果
type WebhookResult struct {
	EventType string
	Ignored   bool
	Created   bool
	Order     *models.Order
}

// OrderMaterializer 把已支付的 Checkout Session 落库为订单
type OrderMaterializer struct {
	orderRepo repository.OrderRepository
	verifier  WebhookVerifier
	mailQueue OrderMailQueue
	metrics   *metrics.Store
	now       func() time.Time
}

// NewOrderMaterializer 创建订单落库服务
func NewOrderMaterializer(orderRepo repository.OrderRepository, verifier WebhookVerifier, mailQueue OrderMailQueue, m *metrics.Store) *OrderMaterializer {
	return &OrderMaterializer{
		orderRepo: orderRepo,
		verifier:  verifier,
		mailQueue: mailQueue,
		metrics:   m,
		now:       time.Now,
	}
}

// HandleStripeWebhook 验签、解析并幂等创建订单。
// 同一 session 重放时返回已有订单且 Created=false，不会重复发送邮件。
func (s *OrderMaterializer) HandleStripeWebhook(ctx context.Context, headers map[string]string, body []byte) (*WebhookResult, error) {
	event, err := s.verifier.VerifyWebhook(headers, body, s.now())
	if err != nil {
		if errors.Is(err, stripe.ErrSignatureInvalid) {
			logger.Warnw("stripe_webhook_signature_invalid", "error", err)
			s.metrics.IncWebhook("unknown", metrics.OutcomeSignatureFailed)
			return nil, fmt.Errorf("%w: %v", ErrWebhookSignatureInvalid, err)
		}
		if errors.Is(err, stripe.ErrResponseInvalid) {
			logger.Warnw("stripe_webhook_payload_invalid", "error", err)
			s.metrics.IncWebhook("unknown", metrics.OutcomeValidation)
			return nil, fmt.Errorf("%w: %v", ErrWebhookPayloadInvalid, err)
		}
		logger.Errorw("stripe_webhook_parse_failed", "error", err)
		s.metrics.IncWebhook("unknown", metrics.OutcomeExternal)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	if event.EventType != constants.StripeEventCheckoutCompleted || event.SessionID == "" {
		logger.Debugw("stripe_webhook_ignored", "event_id", event.EventID, "event_type", event.EventType)
		s.metrics.IncWebhook(event.EventType, metrics.OutcomeIgnored)
		return &WebhookResult{EventType: event.EventType, Ignored: true}, nil
	}

	order, err := s.buildOrder(event)
	if err != nil {
		logger.Errorw("stripe_webhook_snapshot_invalid", "session_id", event.SessionID, "error", err)
		s.metrics.IncWebhook(event.EventType, metrics.OutcomeValidation)
		return nil, err
	}

	created, err := s.orderRepo.CreateIfAbsent(order)
	if err != nil {
		logger.Errorw("order_persist_failed", "session_id", event.SessionID, "error", err)
		s.metrics.IncWebhook(event.EventType, metrics.OutcomeInternal)
		return nil, fmt.Errorf("%w: %v", ErrOrderPersistFailed, err)
	}
	if !created {
		existing, err := s.orderRepo.GetBySessionID(event.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOrderPersistFailed, err)
		}
		logger.Infow("order_already_materialized", "session_id", event.SessionID, "event_id", event.EventID)
		s.metrics.IncWebhook(event.EventType, metrics.OutcomeDuplicate)
		return &WebhookResult{EventType: event.EventType, Order: existing}, nil
	}

	logger.Infow("order_materialized",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"session_id", order.StripeSessionID,
		"total", order.TotalAmount.String(),
		"currency", order.Currency,
	)
	s.metrics.IncWebhook(event.EventType, metrics.OutcomeSuccess)
	s.metrics.AddOrder(order.TotalAmount.InexactFloat64())

	if _, err := enqueueOrderConfirmationIfEligible(s.mailQueue, order); err != nil {
		logger.Warnw("order_confirmation_enqueue_failed", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
	}
	return &WebhookResult{EventType: event.EventType, Created: true, Order: order}, nil
}

func (s *OrderMaterializer) buildOrder(event *stripe.WebhookEvent) (*models.Order, error) {
	snapshot, err := DecodeOrderSnapshot(event.Metadata)
	if err != nil {
		return nil, err
	}
	total := snapshot.Total
	if event.AmountTotal != "" {
		if paid, err := decimal.NewFromString(event.AmountTotal); err == nil {
			if !paid.Equal(total) {
				logger.Warnw("order_total_mismatch", "session_id", event.SessionID, "snapshot_total", total.StringFixed(2), "amount_total", event.AmountTotal)
			}
			total = paid
		}
	}
	currency := strings.ToLower(strings.TrimSpace(event.Currency))
	if currency == "" {
		currency = snapshot.Currency
	}
	email := strings.TrimSpace(snapshot.Contact.Email)
	if email == "" {
		email = strings.TrimSpace(event.CustomerEmail)
	}

	items := make([]models.OrderItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		unit, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d", ErrSnapshotInvalid, item.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID:         item.ProductID,
			OriginalProductID: item.OriginalProductID,
			ComboGroupID:      item.ComboGroupID,
			Name:              item.Name,
			Color:             item.Color,
			Size:              item.Size,
			Quantity:          item.Quantity,
			UnitPrice:         models.NewMoneyFromDecimal(unit),
			TotalPrice:        models.NewMoneyFromDecimal(unit.Mul(decimal.NewFromInt(int64(item.Quantity)))),
		})
	}

	orderNo, err := generateOrderNo(s.now())
	if err != nil {
		return nil, err
	}
	return &models.Order{
		OrderNo:         orderNo,
		StripeSessionID: event.SessionID,
		PaymentIntentID: event.PaymentIntentID,
		CustomerName:    snapshot.Contact.Name,
		CustomerEmail:   email,
		CustomerPhone:   snapshot.Contact.Phone,
		IsPickup:        snapshot.IsPickup,
		ShippingAddress: shippingAddressJSON(snapshot),
		SubtotalAmount:  models.NewMoneyFromDecimal(snapshot.Subtotal),
		DiscountAmount:  models.NewMoneyFromDecimal(snapshot.Discount),
		ShippingCost:    models.NewMoneyFromDecimal(snapshot.ShippingCost),
		TotalAmount:     models.NewMoneyFromDecimal(total),
		Currency:        currency,
		CouponCode:      snapshot.CouponCode,
		Status:          constants.OrderStatusPending,
		Items:           items,
	}, nil
}

func shippingAddressJSON(snapshot *OrderSnapshot) models.JSON {
	if snapshot.IsPickup {
		return models.JSON{"pickup_location": snapshot.PickupLocation}
	}
	c := snapshot.Contact
	return models.JSON{
		"address_line1": c.AddressLine1,
		"address_line2": c.AddressLine2,
		"city":          c.City,
		"state":         c.State,
		"postal_code":   c.PostalCode,
		"country":       c.Country,
	}
}

const orderNoAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateOrderNo 生成 ORD + 日期 + 6 位随机后缀
func generateOrderNo(now time.Time) (string, error) {
	var suffix strings.Builder
	limit := big.NewInt(int64(len(orderNoAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		suffix.WriteByte(orderNoAlphabet[n.Int64()])
	}
	return "ORD" + now.UTC().Format("20060102") + suffix.String(), nil
}
