// Package pricing 订单计价：小计 -> 优惠码折扣 -> 运费规则 -> 应付总额。纯函数，不做任何 I/O。
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 优惠类型
const (
	TypePercentage = "PERCENTAGE"
	TypeFixed      = "FIXED"
)

var (
	ErrSubtotalInvalid = errors.New("subtotal must not be negative")
	ErrCouponInvalid   = errors.New("coupon invalid")
	ErrCouponInactive  = fmt.Errorf("%w: inactive", ErrCouponInvalid)
	ErrCouponExpired   = fmt.Errorf("%w: expired", ErrCouponInvalid)
	ErrCouponMinAmount = fmt.Errorf("%w: minimum order amount not reached", ErrCouponInvalid)
	ErrCouponType      = fmt.Errorf("%w: unknown discount type", ErrCouponInvalid)
)

var hundred = decimal.NewFromInt(100)

// Coupon 参与计价的优惠码
type Coupon struct {
	Code           string
	Type           string
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	IsActive       bool
	ExpiresAt      *time.Time
}

// ShippingRule 运费区间，MaxAmount 为 nil 表示无上限
type ShippingRule struct {
	MinAmount decimal.Decimal
	MaxAmount *decimal.Decimal
	Price     decimal.Decimal
}

// Contains 区间两端均为闭区间
func (r ShippingRule) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(r.MinAmount) {
		return false
	}
	return r.MaxAmount == nil || amount.LessThanOrEqual(*r.MaxAmount)
}

// Input 计价输入；Rules 需按匹配顺序排列
type Input struct {
	Subtotal decimal.Decimal
	Coupon   *Coupon
	Pickup   bool
	Rules    []ShippingRule
	Now      time.Time
}

// Quote 计价结果
type Quote struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	Discount           decimal.Decimal `json:"discount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	Total              decimal.Decimal `json:"total"`
	CouponCode         string          `json:"coupon_code,omitempty"`
	// MatchedRule 命中的规则下标，-1 表示自提或未命中
	MatchedRule int `json:"-"`
}

// Compute 计算折扣、运费与总额。优惠码无效时返回错误，调用方不得继续使用该优惠码。
func Compute(in Input) (Quote, error) {
	if in.Subtotal.IsNegative() {
		return Quote{}, ErrSubtotalInvalid
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	subtotal := in.Subtotal.Round(2)

	q := Quote{Subtotal: subtotal, Discount: decimal.Zero, MatchedRule: -1}
	if in.Coupon != nil {
		if err := ValidateCoupon(*in.Coupon, subtotal, now); err != nil {
			return Quote{}, err
		}
		q.Discount = Discount(*in.Coupon, subtotal)
		q.CouponCode = in.Coupon.Code
	}

	q.DiscountedSubtotal = decimal.Max(decimal.Zero, subtotal.Sub(q.Discount))
	q.ShippingCost, q.MatchedRule = Shipping(in.Rules, q.DiscountedSubtotal, in.Pickup)
	q.Total = q.DiscountedSubtotal.Add(q.ShippingCost).Round(2)
	return q, nil
}

// ValidateCoupon 校验启用、有效期与使用门槛
func ValidateCoupon(c Coupon, subtotal decimal.Decimal, now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return ErrCouponExpired
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return ErrCouponMinAmount
	}
	switch strings.ToUpper(strings.TrimSpace(c.Type)) {
	case TypePercentage, TypeFixed:
		return nil
	default:
		return ErrCouponType
	}
}

// Discount 计算折扣并限制在 [0, subtotal]
func Discount(c Coupon, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch strings.ToUpper(strings.TrimSpace(c.Type)) {
	case TypePercentage:
		discount = subtotal.Mul(c.Value).Div(hundred)
	case TypeFixed:
		discount = c.Value
	default:
		return decimal.Zero
	}
	discount = discount.Round(2)
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}

// Shipping 自提免运费；否则取第一条包含 amount 的规则，均未命中时运费为 0
func Shipping(rules []ShippingRule, amount decimal.Decimal, pickup bool) (decimal.Decimal, int) {
	if pickup {
		return decimal.Zero, -1
	}
	for i, rule := range rules {
		if rule.Contains(amount) {
			return rule.Price.Round(2), i
		}
	}
	return decimal.Zero, -1
}
