package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 错误类别，具体错误均包装其中之一，调用方用 errors.Is 判断类别
var (
	ErrValidation      = errors.New("validation failed")
	ErrExternalService = errors.New("external service failed")
	ErrPersistence     = errors.New("persistence failed")
	ErrNotFound        = errors.New("not found")
)

// 校验类错误
var (
	ErrCouponInvalid          = fmt.Errorf("%w: coupon invalid", ErrValidation)
	ErrCouponNotFound         = fmt.Errorf("%w: coupon not found", ErrCouponInvalid)
	ErrCartEmpty              = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrCartItemInvalid        = fmt.Errorf("%w: cart item invalid", ErrValidation)
	ErrCartTooLarge           = fmt.Errorf("%w: cart has too many lines", ErrValidation)
	ErrComboInvalid           = fmt.Errorf("%w: combo must contain exactly 3 eligible products", ErrValidation)
	ErrProductUnavailable     = fmt.Errorf("%w: product unavailable", ErrValidation)
	ErrPickupDisabled         = fmt.Errorf("%w: store pickup is disabled", ErrValidation)
	ErrShippingCostInvalid    = fmt.Errorf("%w: shipping cost must not be negative", ErrValidation)
	ErrSubtotalInvalid        = fmt.Errorf("%w: subtotal must not be negative", ErrValidation)
	ErrOrderStatusInvalid     = fmt.Errorf("%w: order status transition not allowed", ErrValidation)
	ErrSlugExists             = fmt.Errorf("%w: slug already exists", ErrValidation)
	ErrCouponCodeExists       = fmt.Errorf("%w: coupon code already exists", ErrValidation)
	ErrCategoryInUse          = fmt.Errorf("%w: category still has products", ErrValidation)
	ErrProductCategoryInvalid = fmt.Errorf("%w: category does not exist", ErrValidation)
	ErrDiscountInvalid        = fmt.Errorf("%w: discount value invalid", ErrValidation)
	ErrShippingRuleInvalid    = fmt.Errorf("%w: shipping rule range invalid", ErrValidation)
	ErrSettingInvalid         = fmt.Errorf("%w: store setting invalid", ErrValidation)
	ErrInvalidCredentials     = fmt.Errorf("%w: invalid username or password", ErrValidation)
	ErrSnapshotInvalid        = fmt.Errorf("%w: checkout metadata invalid", ErrValidation)
	ErrWebhookPayloadInvalid  = fmt.Errorf("%w: webhook payload invalid", ErrValidation)
	ErrShippingRuleOverlap    = fmt.Errorf("%w: shipping rule overlaps an existing range", ErrShippingRuleInvalid)
	ErrInvalidEmail           = fmt.Errorf("%w: invalid email address", ErrValidation)
)

// 外部服务类错误
var (
	ErrPaymentSessionFailed      = fmt.Errorf("%w: payment session creation failed", ErrExternalService)
	ErrWebhookSignatureInvalid   = fmt.Errorf("%w: webhook signature invalid", ErrExternalService)
	ErrEmailServiceDisabled      = fmt.Errorf("%w: email service disabled", ErrExternalService)
	ErrEmailServiceNotConfigured = fmt.Errorf("%w: email service not configured", ErrExternalService)
	ErrEmailRecipientRejected    = fmt.Errorf("%w: email recipient rejected", ErrExternalService)
)

// 持久化类错误
var (
	ErrOrderPersistFailed = fmt.Errorf("%w: order persist failed", ErrPersistence)
)

// 资源不存在
var (
	ErrOrderNotFound    = fmt.Errorf("%w: order", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("%w: product", ErrNotFound)
	ErrCategoryMissing  = fmt.Errorf("%w: category", ErrNotFound)
	ErrCouponMissing    = fmt.Errorf("%w: coupon", ErrNotFound)
	ErrBannerNotFound   = fmt.Errorf("%w: banner", ErrNotFound)
	ErrShippingNotFound = fmt.Errorf("%w: shipping rule", ErrNotFound)
	ErrAdminNotFound    = fmt.Errorf("%w: admin", ErrNotFound)
)

// FieldError 逐字段校验失败，键为 JSON 字段名
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

// Unwrap 归入校验类别
func (e *FieldError) Unwrap() error {
	return ErrValidation
}
