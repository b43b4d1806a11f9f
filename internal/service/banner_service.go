package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/cache"
	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

// BannerService 首页轮播图服务
type BannerService struct {
	repo  repository.BannerRepository
	cache *cache.Store
	ttl   time.Duration
}

// NewBannerService 创建 Banner 服务
func NewBannerService(repo repository.BannerRepository, store *cache.Store, ttl time.Duration) *BannerService {
	return &BannerService{repo: repo, cache: store, ttl: ttl}
}

// BannerInput 创建/更新 Banner 输入
type BannerInput struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	ImageURL  string `json:"image"`
	LinkURL   string `json:"link_url"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// ListPublic 前台轮播图（带缓存）
func (s *BannerService) ListPublic(ctx context.Context) ([]models.Banner, error) {
	return loadCached(ctx, s.cache, constants.CacheKeyBanners, s.ttl, func() ([]models.Banner, error) {
		list, _, err := s.repo.List(repository.BannerListFilter{OnlyActive: true})
		if err != nil {
			return nil, fmt.Errorf("%w: list banners: %v", ErrPersistence, err)
		}
		return list, nil
	})
}

// ListAdmin 后台轮播图列表
func (s *BannerService) ListAdmin(page, pageSize int) ([]models.Banner, int64, error) {
	list, total, err := s.repo.List(repository.BannerListFilter{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list banners: %v", ErrPersistence, err)
	}
	return list, total, nil
}

// Create 创建 Banner
func (s *BannerService) Create(ctx context.Context, input BannerInput) (*models.Banner, error) {
	banner := &models.Banner{IsActive: true}
	if err := applyBannerInput(banner, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(banner); err != nil {
		return nil, fmt.Errorf("%w: create banner: %v", ErrPersistence, err)
	}
	invalidateCached(ctx, s.cache, constants.CacheKeyBanners)
	return banner, nil
}

// Update 更新 Banner
func (s *BannerService) Update(ctx context.Context, id uint, input BannerInput) (*models.Banner, error) {
	banner, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := applyBannerInput(banner, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(banner); err != nil {
		return nil, fmt.Errorf("%w: update banner: %v", ErrPersistence, err)
	}
	invalidateCached(ctx, s.cache, constants.CacheKeyBanners)
	return banner, nil
}

// Delete 删除 Banner
func (s *BannerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("%w: delete banner: %v", ErrPersistence, err)
	}
	invalidateCached(ctx, s.cache, constants.CacheKeyBanners)
	return nil
}

func (s *BannerService) get(id uint) (*models.Banner, error) {
	banner, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: get banner: %v", ErrPersistence, err)
	}
	if banner == nil {
		return nil, ErrBannerNotFound
	}
	return banner, nil
}

func applyBannerInput(banner *models.Banner, input BannerInput) error {
	image := strings.TrimSpace(input.ImageURL)
	if image == "" {
		return &FieldError{Fields: map[string]string{"image": "is required"}}
	}
	banner.Title = strings.TrimSpace(input.Title)
	banner.Subtitle = strings.TrimSpace(input.Subtitle)
	banner.ImageURL = image
	banner.LinkURL = strings.TrimSpace(input.LinkURL)
	banner.SortOrder = input.SortOrder
	if input.IsActive != nil {
		banner.IsActive = *input.IsActive
	}
	return nil
}
