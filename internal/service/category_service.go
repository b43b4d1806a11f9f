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

// CategoryService 分类业务服务
type CategoryService struct {
	repo  repository.CategoryRepository
	cache *cache.Store
	ttl   time.Duration
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository, store *cache.Store, ttl time.Duration) *CategoryService {
	return &CategoryService{repo: repo, cache: store, ttl: ttl}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// ListPublic 前台分类列表（带缓存）
func (s *CategoryService) ListPublic(ctx context.Context) ([]models.Category, error) {
	return loadCached(ctx, s.cache, constants.CacheKeyCategories, s.ttl, func() ([]models.Category, error) {
		list, err := s.repo.List(repository.CategoryListFilter{OnlyActive: true})
		if err != nil {
			return nil, fmt.Errorf("%w: list categories: %v", ErrPersistence, err)
		}
		return list, nil
	})
}

// ListAdmin 后台分类列表
func (s *CategoryService) ListAdmin() ([]models.Category, error) {
	list, err := s.repo.List(repository.CategoryListFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", ErrPersistence, err)
	}
	return list, nil
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*models.Category, error) {
	category := &models.Category{IsActive: true}
	if err := s.apply(category, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(category); err != nil {
		return nil, fmt.Errorf("%w: create category: %v", ErrPersistence, err)
	}
	invalidateCached(ctx, s.cache, constants.CacheKeyCategories)
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(ctx context.Context, id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(category, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(category); err != nil {
		return nil, fmt.Errorf("%w: update category: %v", ErrPersistence, err)
	}
	invalidateCached(ctx, s.cache, constants.CacheKeyCategories)
	return category, nil
}

// Delete 删除分类，仍有商品时拒绝
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(id)
	if err != nil {
		return fmt.Errorf("%w: count products: %v", ErrPersistence, err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("%w: delete category: %v", ErrPersistence, err)
	}
	invalidateCached(ctx, s.cache, constants.CacheKeyCategories)
	return nil
}

func (s *CategoryService) get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: get category: %v", ErrPersistence, err)
	}
	if category == nil {
		return nil, ErrCategoryMissing
	}
	return category, nil
}

func (s *CategoryService) apply(category *models.Category, input CategoryInput) error {
	slug := normalizeSlug(input.Slug)
	name := strings.TrimSpace(input.Name)
	fields := map[string]string{}
	if slug == "" {
		fields["slug"] = "is required"
	}
	if name == "" {
		fields["name"] = "is required"
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	count, err := s.repo.CountBySlug(slug, category.ID)
	if err != nil {
		return fmt.Errorf("%w: check slug: %v", ErrPersistence, err)
	}
	if count > 0 {
		return ErrSlugExists
	}
	category.Slug = slug
	category.Name = name
	category.Description = strings.TrimSpace(input.Description)
	category.ImageURL = strings.TrimSpace(input.ImageURL)
	category.SortOrder = input.SortOrder
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	return nil
}

// normalizeSlug 统一小写并把空白替换为连字符
func normalizeSlug(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}
