package repository

import (
	"errors"

	"github.com/aurelia-jewelry/internal/models"

	"gorm.io/gorm"
)

// BannerRepository 轮播图数据访问接口
type BannerRepository interface {
	List(filter BannerListFilter) ([]models.Banner, int64, error)
	GetByID(id uint) (*models.Banner, error)
	Create(banner *models.Banner) error
	Update(banner *models.Banner) error
	Delete(id uint) error
}

// GormBannerRepository GORM 实现
type GormBannerRepository struct {
	db *gorm.DB
}

// NewBannerRepository 创建轮播图仓库
func NewBannerRepository(db *gorm.DB) *GormBannerRepository {
	return &GormBannerRepository{db: db}
}

// List 轮播图列表
func (r *GormBannerRepository) List(filter BannerListFilter) ([]models.Banner, int64, error) {
	query := r.db.Model(&models.Banner{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var banners []models.Banner
	if err := query.Order("sort_order DESC, created_at DESC").Find(&banners).Error; err != nil {
		return nil, 0, err
	}
	return banners, total, nil
}

// GetByID 根据 ID 获取
func (r *GormBannerRepository) GetByID(id uint) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.First(&banner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &banner, nil
}

// Create 创建轮播图
func (r *GormBannerRepository) Create(banner *models.Banner) error {
	return r.db.Create(banner).Error
}

// Update 更新轮播图
func (r *GormBannerRepository) Update(banner *models.Banner) error {
	return r.db.Save(banner).Error
}

// Delete 删除轮播图
func (r *GormBannerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Banner{}, id).Error
}
