package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/pricing"
	"github.com/aurelia-jewelry/internal/repository"

	"github.com/shopspring/decimal"
)

// PricingService 计价规则解析：优惠码 + 运费规则
type PricingService struct {
	couponRepo   repository.CouponRepository
	shippingRepo repository.ShippingRuleRepository
	now          func() time.Time
}

// NewPricingService 创建计价服务
func NewPricingService(couponRepo repository.CouponRepository, shippingRepo repository.ShippingRuleRepository) *PricingService {
	return &PricingService{
		couponRepo:   couponRepo,
		shippingRepo: shippingRepo,
		now:          time.Now,
	}
}

// QuoteInput 报价输入
type QuoteInput struct {
	Subtotal   decimal.Decimal
	CouponCode string
	IsPickup   bool
}

// CouponCheck 优惠码校验结果
type CouponCheck struct {
	Coupon   *models.Coupon
	Discount decimal.Decimal
}

// ComputeTotal 计算折扣、运费与应付总额
func (s *PricingService) ComputeTotal(ctx context.Context, input QuoteInput) (pricing.Quote, error) {
	if input.Subtotal.IsNegative() {
		return pricing.Quote{}, ErrSubtotalInvalid
	}
	var coupon *pricing.Coupon
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		record, err := s.lookupCoupon(code)
		if err != nil {
			return pricing.Quote{}, err
		}
		coupon = toPricingCoupon(record)
	}

	rules, err := s.shippingRules()
	if err != nil {
		return pricing.Quote{}, err
	}
	quote, err := pricing.Compute(pricing.Input{
		Subtotal: input.Subtotal,
		Coupon:   coupon,
		Pickup:   input.IsPickup,
		Rules:    rules,
		Now:      s.now(),
	})
	if err != nil {
		return pricing.Quote{}, mapPricingError(err)
	}
	return quote, nil
}

// ValidateCoupon 校验优惠码并返回折扣金额
func (s *PricingService) ValidateCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (*CouponCheck, error) {
	if subtotal.IsNegative() {
		return nil, ErrSubtotalInvalid
	}
	record, err := s.lookupCoupon(code)
	if err != nil {
		return nil, err
	}
	coupon := toPricingCoupon(record)
	if err := pricing.ValidateCoupon(*coupon, subtotal, s.now()); err != nil {
		return nil, mapPricingError(err)
	}
	return &CouponCheck{
		Coupon:   record,
		Discount: pricing.Discount(*coupon, subtotal),
	}, nil
}

func (s *PricingService) lookupCoupon(code string) (*models.Coupon, error) {
	code = repository.NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}
	record, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: load coupon: %v", ErrPersistence, err)
	}
	if record == nil {
		return nil, ErrCouponNotFound
	}
	return record, nil
}

func (s *PricingService) shippingRules() ([]pricing.ShippingRule, error) {
	records, err := s.shippingRepo.ListOrdered()
	if err != nil {
		return nil, fmt.Errorf("%w: load shipping rules: %v", ErrPersistence, err)
	}
	rules := make([]pricing.ShippingRule, 0, len(records))
	for _, r := range records {
		rule := pricing.ShippingRule{
			MinAmount: r.MinAmount.Decimal,
			Price:     r.Price.Decimal,
		}
		if r.MaxAmount != nil {
			upper := r.MaxAmount.Decimal
			rule.MaxAmount = &upper
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func toPricingCoupon(c *models.Coupon) *pricing.Coupon {
	return &pricing.Coupon{
		Code:           c.Code,
		Type:           c.DiscountType,
		Value:          c.DiscountValue.Decimal,
		MinOrderAmount: c.MinOrderAmount.Decimal,
		IsActive:       c.IsActive,
		ExpiresAt:      c.ExpiresAt,
	}
}

// mapPricingError 把纯计价错误归入服务错误类别，保留原始原因
func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrCouponInvalid):
		return fmt.Errorf("%w: %w", ErrCouponInvalid, err)
	case errors.Is(err, pricing.ErrSubtotalInvalid):
		return ErrSubtotalInvalid
	default:
		return err
	}
}
