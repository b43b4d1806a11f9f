package service

import (
	"fmt"
	"strings"

	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID      uint         `json:"category_id"`
	Slug            string       `json:"slug"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Price           models.Money `json:"price"`
	ImageURL        string       `json:"image_url"`
	Images          []string     `json:"images"`
	Colors          []string     `json:"colors"`
	Sizes           []string     `json:"sizes"`
	IsComboEligible bool         `json:"is_combo_eligible"`
	IsActive        *bool        `json:"is_active"`
	SortOrder       int          `json:"sort_order"`
}

// ListPublic 前台商品列表，可按分类 slug 过滤
func (s *ProductService) ListPublic(categorySlug, search string, comboOnly bool, page, pageSize int) ([]models.Product, int64, error) {
	list, total, err := s.repo.List(repository.ProductListFilter{
		Page:          page,
		PageSize:      pageSize,
		CategorySlug:  strings.TrimSpace(categorySlug),
		Search:        strings.TrimSpace(search),
		OnlyActive:    true,
		ComboEligible: comboOnly,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
	}
	return list, total, nil
}

// GetPublicBySlug 前台商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", ErrPersistence, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 后台商品列表
func (s *ProductService) ListAdmin(categoryID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	list, total, err := s.repo.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       strings.TrimSpace(search),
		WithCategory: true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
	}
	return list, total, nil
}

// GetAdminByID 后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", ErrPersistence, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	product := &models.Product{IsActive: true}
	if err := s.apply(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("%w: create product: %v", ErrPersistence, err)
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetAdminByID(id)
	if err != nil {
		return nil, err
	}
	product.Category = nil
	if err := s.apply(product, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("%w: update product: %v", ErrPersistence, err)
	}
	return product, nil
}

// Delete 删除商品（软删除，历史订单项保留快照）
func (s *ProductService) Delete(id uint) error {
	if _, err := s.GetAdminByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("%w: delete product: %v", ErrPersistence, err)
	}
	return nil
}

func (s *ProductService) apply(product *models.Product, input ProductInput) error {
	slug := normalizeSlug(input.Slug)
	name := strings.TrimSpace(input.Name)
	fields := map[string]string{}
	if slug == "" {
		fields["slug"] = "is required"
	}
	if name == "" {
		fields["name"] = "is required"
	}
	if !input.Price.IsPositive() {
		fields["price"] = "must be a positive amount"
	}
	if input.CategoryID == 0 {
		fields["category_id"] = "is required"
	}
	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return fmt.Errorf("%w: get category: %v", ErrPersistence, err)
	}
	if category == nil {
		return ErrProductCategoryInvalid
	}
	count, err := s.repo.CountBySlug(slug, product.ID)
	if err != nil {
		return fmt.Errorf("%w: check slug: %v", ErrPersistence, err)
	}
	if count > 0 {
		return ErrSlugExists
	}

	product.CategoryID = category.ID
	product.Slug = slug
	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.PriceAmount = models.NewMoneyFromDecimal(input.Price.Decimal)
	product.ImageURL = strings.TrimSpace(input.ImageURL)
	product.Images = cleanStrings(input.Images)
	product.Colors = cleanStrings(input.Colors)
	product.Sizes = cleanStrings(input.Sizes)
	product.IsComboEligible = input.IsComboEligible
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return nil
}

// cleanStrings 去除空白与重复项，保持原顺序
func cleanStrings(values []string) models.StringArray {
	out := make(models.StringArray, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
