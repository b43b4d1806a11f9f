package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/cart"
	"github.com/aurelia-jewelry/internal/logger"
	"github.com/aurelia-jewelry/internal/metrics"
	"github.com/aurelia-jewelry/internal/payment/stripe"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// PaymentGateway 支付会话创建接口
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input stripe.SessionInput) (*stripe.Session, error)
}

// Contact 顾客联系方式与收货地址；自提时只校验姓名与邮箱
type Contact struct {
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"required,contains=@,max=200"`
	Phone        string `json:"phone" validate:"max=40"`
	AddressLine1 string `json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `json:"address_line2" validate:"max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=56"`
}

// pickupExempt 自提订单不需要的地址字段
var pickupExempt = []string{"AddressLine1", "City", "PostalCode", "Country"}

// CheckoutInput 发起结账输入；Items 为已按服务端价格重建的购物车行
type CheckoutInput struct {
	Items        []cart.Item
	Contact      Contact
	ShippingCost decimal.Decimal
	CouponCode   string
	IsPickup     bool
}

// CheckoutRequest 前台结账请求
type CheckoutRequest struct {
	Items      []CartLineInput `json:"items"`
	Contact    Contact         `json:"contact"`
	CouponCode string          `json:"coupon_code"`
	IsPickup   bool            `json:"is_pickup"`
}

// CheckoutSession 支付会话
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CheckoutService 结账编排：校验 -> 计价 -> 创建支付会话。不写任何持久化状态。
type CheckoutService struct {
	cartSvc    *CartService
	pricingSvc *PricingService
	settings   StoreSettingsReader
	gateway    PaymentGateway
	metrics    *metrics.Store
	validate   *validator.Validate
}

// NewCheckoutService 创建结账服务
func NewCheckoutService(cartSvc *CartService, pricingSvc *PricingService, settings StoreSettingsReader, gateway PaymentGateway, m *metrics.Store) *CheckoutService {
	return &CheckoutService{
		cartSvc:    cartSvc,
		pricingSvc: pricingSvc,
		settings:   settings,
		gateway:    gateway,
		metrics:    m,
		validate:   newContactValidator(),
	}
}

func newContactValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Checkout 前台完整结账：按服务端价格重建购物车，报价运费后发起支付会话
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	resolved, err := s.cartSvc.Resolve(ctx, req.Items)
	if err != nil {
		s.metrics.ObserveCheckout(checkoutOutcome(err), 0)
		return nil, err
	}
	quote, err := s.pricingSvc.ComputeTotal(ctx, QuoteInput{
		Subtotal:   resolved.Total(),
		CouponCode: req.CouponCode,
		IsPickup:   req.IsPickup,
	})
	if err != nil {
		s.metrics.ObserveCheckout(checkoutOutcome(err), 0)
		return nil, err
	}
	return s.InitiateCheckout(ctx, CheckoutInput{
		Items:        resolved.Items,
		Contact:      req.Contact,
		ShippingCost: quote.ShippingCost,
		CouponCode:   req.CouponCode,
		IsPickup:     req.IsPickup,
	})
}

// InitiateCheckout 校验输入、重算折扣并创建 Stripe Checkout Session
func (s *CheckoutService) InitiateCheckout(ctx context.Context, input CheckoutInput) (session *CheckoutSession, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveCheckout(checkoutOutcome(err), time.Since(started))
	}()

	settings, err := s.settings.GetStoreSettings(ctx)
	if err != nil {
		return nil, err
	}
	if input.IsPickup && !settings.PickupEnabled {
		return nil, ErrPickupDisabled
	}
	contact, err := s.validateContact(input.Contact, input.IsPickup)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, ErrCartEmpty
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d quantity must be positive", ErrCartItemInvalid, item.ProductID)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: product %d price invalid", ErrCartItemInvalid, item.ProductID)
		}
	}
	current := cart.Cart{Items: input.Items}
	if err := current.ValidateCombos(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComboInvalid, err)
	}
	if input.ShippingCost.IsNegative() {
		return nil, ErrShippingCostInvalid
	}
	shipping := input.ShippingCost.Round(2)
	if input.IsPickup {
		shipping = decimal.Zero
	}

	subtotal := current.Total()
	discount := decimal.Zero
	couponCode := ""
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		check, err := s.pricingSvc.ValidateCoupon(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		discount = check.Discount.Round(2)
		couponCode = check.Coupon.Code
	}
	total := decimal.Max(subtotal.Sub(discount), decimal.Zero).Add(shipping).Round(2)

	snapshot := OrderSnapshot{
		Contact:      contact,
		IsPickup:     input.IsPickup,
		CouponCode:   couponCode,
		Currency:     settings.Currency,
		Subtotal:     subtotal,
		Discount:     discount,
		ShippingCost: shipping,
		Total:        total,
		Items:        snapshotItems(current.Items),
	}
	if input.IsPickup {
		snapshot.PickupLocation = settings.PickupAddress
	}
	meta, err := snapshot.EncodeMetadata()
	if err != nil {
		return nil, err
	}

	created, err := s.gateway.CreateCheckoutSession(ctx, stripe.SessionInput{
		Currency:      settings.Currency,
		LineItems:     buildLineItems(current.Items),
		Discount:      discount,
		DiscountLabel: couponCode,
		ShippingCost:  shipping,
		ShippingLabel: shippingLabel(input.IsPickup, settings),
		CustomerEmail: contact.Email,
		Metadata:      meta,
	})
	if err != nil {
		logger.Errorw("checkout_session_create_failed", "error", err, "email", contact.Email, "total", total.StringFixed(2))
		return nil, fmt.Errorf("%w: %v", ErrPaymentSessionFailed, err)
	}
	logger.Infow("checkout_session_created",
		"session_id", created.ID,
		"items", len(current.Items),
		"subtotal", subtotal.StringFixed(2),
		"discount", discount.StringFixed(2),
		"shipping", shipping.StringFixed(2),
		"total", total.StringFixed(2),
		"pickup", input.IsPickup,
	)
	return &CheckoutSession{SessionID: created.ID, URL: created.URL}, nil
}

func (s *CheckoutService) validateContact(contact Contact, pickup bool) (Contact, error) {
	contact = Contact{
		Name:         strings.TrimSpace(contact.Name),
		Email:        strings.TrimSpace(contact.Email),
		Phone:        strings.TrimSpace(contact.Phone),
		AddressLine1: strings.TrimSpace(contact.AddressLine1),
		AddressLine2: strings.TrimSpace(contact.AddressLine2),
		City:         strings.TrimSpace(contact.City),
		State:        strings.TrimSpace(contact.State),
		PostalCode:   strings.TrimSpace(contact.PostalCode),
		Country:      strings.TrimSpace(contact.Country),
	}
	var err error
	if pickup {
		err = s.validate.StructExcept(contact, pickupExempt...)
	} else {
		err = s.validate.Struct(contact)
	}
	if err == nil {
		return contact, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return contact, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return contact, &FieldError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "contains":
		return "must be a valid email"
	}
	return "is invalid"
}

func buildLineItems(items []cart.Item) []stripe.LineItem {
	lines := make([]stripe.LineItem, 0, len(items))
	for _, item := range items {
		meta := map[string]string{"product_id": strconv.FormatUint(uint64(item.ProductID), 10)}
		if item.InCombo() {
			meta["combo_group_id"] = item.ComboGroupID
			meta["original_product_id"] = strconv.FormatUint(uint64(item.OriginalProductID), 10)
		}
		lines = append(lines, stripe.LineItem{
			Name:       lineItemName(item),
			ImageURL:   item.ImageURL,
			UnitAmount: item.UnitPrice.Round(2),
			Quantity:   item.Quantity,
			Metadata:   meta,
		})
	}
	return lines
}

// lineItemName 拼接规格，例如 "Hoop Earrings (Gold, 7)"
func lineItemName(item cart.Item) string {
	variant := make([]string, 0, 2)
	if item.Color != "" {
		variant = append(variant, item.Color)
	}
	if item.Size != "" {
		variant = append(variant, item.Size)
	}
	name := item.Name
	if len(variant) > 0 {
		name += " (" + strings.Join(variant, ", ") + ")"
	}
	if item.InCombo() {
		name += " - Combo"
	}
	return name
}

func shippingLabel(pickup bool, settings StoreSettings) string {
	if pickup {
		return "Store pickup"
	}
	if settings.DeliveryWindow != "" {
		return "Shipping (" + settings.DeliveryWindow + ")"
	}
	return "Shipping"
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, ErrExternalService):
		return metrics.OutcomeExternal
	default:
		return metrics.OutcomeInternal
	}
}
