package repository

import (
	"errors"

	"github.com/aurelia-jewelry/internal/models"

	"gorm.io/gorm"
)

// ShippingRuleRepository 运费规则数据访问接口
type ShippingRuleRepository interface {
	ListOrdered() ([]models.ShippingRule, error)
	GetByID(id uint) (*models.ShippingRule, error)
	Create(rule *models.ShippingRule) error
	Update(rule *models.ShippingRule) error
	Delete(id uint) error
}

// GormShippingRuleRepository GORM 实现
type GormShippingRuleRepository struct {
	db *gorm.DB
}

// NewShippingRuleRepository 创建运费规则仓库
func NewShippingRuleRepository(db *gorm.DB) *GormShippingRuleRepository {
	return &GormShippingRuleRepository{db: db}
}

// ListOrdered 按匹配顺序返回全部规则
func (r *GormShippingRuleRepository) ListOrdered() ([]models.ShippingRule, error) {
	var rules []models.ShippingRule
	if err := r.db.Order("sort_order ASC, min_amount ASC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// GetByID 根据 ID 获取
func (r *GormShippingRuleRepository) GetByID(id uint) (*models.ShippingRule, error) {
	var rule models.ShippingRule
	if err := r.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// Create 创建规则
func (r *GormShippingRuleRepository) Create(rule *models.ShippingRule) error {
	return r.db.Create(rule).Error
}

// Update 更新规则
func (r *GormShippingRuleRepository) Update(rule *models.ShippingRule) error {
	return r.db.Save(rule).Error
}

// Delete 删除规则
func (r *GormShippingRuleRepository) Delete(id uint) error {
	return r.db.Delete(&models.ShippingRule{}, id).Error
}
