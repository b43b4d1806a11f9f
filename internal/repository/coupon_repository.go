package repository

import (
	"errors"
	"strings"

	"github.com/aurelia-jewelry/internal/models"

	"gorm.io/gorm"
)

// CouponRepository 优惠码数据访问接口
type CouponRepository interface {
	GetByCode(code string) (*models.Coupon, error)
	GetByID(id uint) (*models.Coupon, error)
	List(filter CouponListFilter) ([]models.Coupon, int64, error)
	CountByCode(code string, excludeID uint) (int64, error)
	Create(coupon *models.Coupon) error
	Update(coupon *models.Coupon) error
	Delete(id uint) error
}

// GormCouponRepository GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewCouponRepository 创建优惠码仓库
func NewCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// NormalizeCouponCode 优惠码统一去空格并转大写
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByCode 根据优惠码获取（不区分大小写）
func (r *GormCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.Where("code = ?", NormalizeCouponCode(code)).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// GetByID 根据 ID 获取
func (r *GormCouponRepository) GetByID(id uint) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// List 优惠码列表
func (r *GormCouponRepository) List(filter CouponListFilter) ([]models.Coupon, int64, error) {
	query := r.db.Model(&models.Coupon{})
	query = applyKeywordSearch(query, r.db, filter.Code, "code")
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var coupons []models.Coupon
	if err := query.Order("id DESC").Find(&coupons).Error; err != nil {
		return nil, 0, err
	}
	return coupons, total, nil
}

// CountByCode 统计优惠码占用数量
func (r *GormCouponRepository) CountByCode(code string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Coupon{}).Where("code = ?", NormalizeCouponCode(code))
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建优惠码
func (r *GormCouponRepository) Create(coupon *models.Coupon) error {
	coupon.Code = NormalizeCouponCode(coupon.Code)
	return r.db.Create(coupon).Error
}

// Update 更新优惠码
func (r *GormCouponRepository) Update(coupon *models.Coupon) error {
	coupon.Code = NormalizeCouponCode(coupon.Code)
	return r.db.Save(coupon).Error
}

// Delete 删除优惠码（软删除）
func (r *GormCouponRepository) Delete(id uint) error {
	return r.db.Delete(&models.Coupon{}, id).Error
}
