package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponAdminService 优惠码管理服务
type CouponAdminService struct {
	repo repository.CouponRepository
}

// NewCouponAdminService 创建优惠码管理服务
func NewCouponAdminService(repo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo}
}

// CouponInput 创建/更新优惠码输入
type CouponInput struct {
	Code           string       `json:"code"`
	DiscountType   string       `json:"discount_type"`
	DiscountValue  models.Money `json:"discount_value"`
	MinOrderAmount models.Money `json:"min_order_amount"`
	IsActive       *bool        `json:"is_active"`
	ExpiresAt      *time.Time   `json:"expires_at"`
}

// List 优惠码列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	list, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list coupons: %v", ErrPersistence, err)
	}
	return list, total, nil
}

// Create 创建优惠码
func (s *CouponAdminService) Create(input CouponInput) (*models.Coupon, error) {
	coupon := &models.Coupon{IsActive: true}
	if err := s.apply(coupon, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, fmt.Errorf("%w: create coupon: %v", ErrPersistence, err)
	}
	return coupon, nil
}

// Update 更新优惠码
func (s *CouponAdminService) Update(id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(coupon, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(coupon); err != nil {
		return nil, fmt.Errorf("%w: update coupon: %v", ErrPersistence, err)
	}
	return coupon, nil
}

// Delete 删除优惠码
func (s *CouponAdminService) Delete(id uint) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("%w: delete coupon: %v", ErrPersistence, err)
	}
	return nil
}

func (s *CouponAdminService) get(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: get coupon: %v", ErrPersistence, err)
	}
	if coupon == nil {
		return nil, ErrCouponMissing
	}
	return coupon, nil
}

func (s *CouponAdminService) apply(coupon *models.Coupon, input CouponInput) error {
	code := repository.NormalizeCouponCode(input.Code)
	if code == "" {
		return &FieldError{Fields: map[string]string{"code": "is required"}}
	}
	discountType := strings.ToUpper(strings.TrimSpace(input.DiscountType))
	value := input.DiscountValue.Decimal
	switch discountType {
	case constants.DiscountTypePercentage:
		if !value.IsPositive() || value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: percentage must be within (0, 100]", ErrDiscountInvalid)
		}
	case constants.DiscountTypeFixed:
		if !value.IsPositive() {
			return fmt.Errorf("%w: fixed amount must be positive", ErrDiscountInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown discount type %q", ErrDiscountInvalid, input.DiscountType)
	}
	if input.MinOrderAmount.IsNegative() {
		return fmt.Errorf("%w: min_order_amount must not be negative", ErrDiscountInvalid)
	}

	count, err := s.repo.CountByCode(code, coupon.ID)
	if err != nil {
		return fmt.Errorf("%w: check coupon code: %v", ErrPersistence, err)
	}
	if count > 0 {
		return ErrCouponCodeExists
	}

	coupon.Code = code
	coupon.DiscountType = discountType
	coupon.DiscountValue = models.NewMoneyFromDecimal(value)
	coupon.MinOrderAmount = models.NewMoneyFromDecimal(input.MinOrderAmount.Decimal)
	coupon.ExpiresAt = input.ExpiresAt
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}
	return nil
}
