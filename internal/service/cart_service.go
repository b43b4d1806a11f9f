package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelia-jewelry/internal/cart"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

// CartLineInput 客户端提交的购物车行，价格一律以服务端商品为准
type CartLineInput struct {
	ProductID    uint   `json:"product_id"`
	Quantity     int    `json:"quantity"`
	Color        string `json:"color"`
	Size         string `json:"size"`
	ComboGroupID string `json:"combo_group_id"`
}

// ComboPickInput 组合选品
type ComboPickInput struct {
	ProductID uint   `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// CartSummary 购物车汇总（用于响应）
type CartSummary struct {
	Items  []cart.Item  `json:"items"`
	Groups []cart.Group `json:"groups"`
	Count  int          `json:"count"`
	Total  models.Money `json:"total"`
}

// CartService 购物车重算与组合构建
type CartService struct {
	productRepo repository.ProductRepository
	settings    StoreSettingsReader
}

// NewCartService 创建购物车服务
func NewCartService(productRepo repository.ProductRepository, settings StoreSettingsReader) *CartService {
	return &CartService{productRepo: productRepo, settings: settings}
}

// Resolve 按服务端价格重建购物车：普通行合并，组合行按当前组合价重新均摊
func (s *CartService) Resolve(ctx context.Context, lines []CartLineInput) (cart.Cart, error) {
	if len(lines) == 0 {
		return cart.Cart{}, ErrCartEmpty
	}
	products, err := s.loadProducts(lineProductIDs(lines))
	if err != nil {
		return cart.Cart{}, err
	}

	groups := make(map[string][]CartLineInput)
	order := make([]string, 0)
	for _, line := range lines {
		if line.Quantity <= 0 {
			return cart.Cart{}, fmt.Errorf("%w: product %d quantity must be positive", ErrCartItemInvalid, line.ProductID)
		}
		groupID := strings.TrimSpace(line.ComboGroupID)
		if groupID == "" {
			continue
		}
		// 组合内每件固定 1 件，数量不能单独修改
		if line.Quantity != 1 {
			return cart.Cart{}, fmt.Errorf("%w: product %d in combo %s must have quantity 1", ErrComboInvalid, line.ProductID, groupID)
		}
		if _, ok := groups[groupID]; !ok {
			order = append(order, groupID)
		}
		groups[groupID] = append(groups[groupID], line)
	}

	var settings StoreSettings
	if len(groups) > 0 {
		if settings, err = s.settings.GetStoreSettings(ctx); err != nil {
			return cart.Cart{}, err
		}
	}

	result := cart.Cart{}
	built := make(map[string]bool, len(groups))
	for _, line := range lines {
		groupID := strings.TrimSpace(line.ComboGroupID)
		if groupID != "" {
			if built[groupID] {
				continue
			}
			items, err := buildComboItems(products, toPicks(groups[groupID]), settings.ComboPrice, groupID)
			if err != nil {
				return cart.Cart{}, err
			}
			if result, err = result.AddCombo(items); err != nil {
				return cart.Cart{}, fmt.Errorf("%w: %v", ErrComboInvalid, err)
			}
			built[groupID] = true
			continue
		}
		product, err := availableProduct(products, line.ProductID)
		if err != nil {
			return cart.Cart{}, err
		}
		color, size, err := checkVariant(product, line.Color, line.Size)
		if err != nil {
			return cart.Cart{}, err
		}
		result = result.AddItem(cart.Item{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.PriceAmount.Decimal,
			Quantity:  line.Quantity,
			ImageURL:  product.ImageURL,
			Color:     color,
			Size:      size,
		})
	}
	return result, nil
}

// Summarize 返回重算后的购物车汇总
func (s *CartService) Summarize(ctx context.Context, lines []CartLineInput) (*CartSummary, error) {
	resolved, err := s.Resolve(ctx, lines)
	if err != nil {
		return nil, err
	}
	return summarize(resolved), nil
}

// BuildCombo 以当前组合价构建三件套，返回可直接加入购物车的 3 行
func (s *CartService) BuildCombo(ctx context.Context, picks []ComboPickInput) ([]cart.Item, error) {
	if len(picks) != cart.ComboSize {
		return nil, ErrComboInvalid
	}
	ids := make([]uint, 0, len(picks))
	for _, p := range picks {
		ids = append(ids, p.ProductID)
	}
	products, err := s.loadProducts(ids)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetStoreSettings(ctx)
	if err != nil {
		return nil, err
	}
	return buildComboItems(products, picks, settings.ComboPrice, cart.NewComboGroupID())
}

func (s *CartService) loadProducts(ids []uint) (map[uint]models.Product, error) {
	list, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %v", ErrPersistence, err)
	}
	out := make(map[uint]models.Product, len(list))
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

func buildComboItems(products map[uint]models.Product, picks []ComboPickInput, comboPrice models.Money, groupID string) ([]cart.Item, error) {
	if len(picks) != cart.ComboSize {
		return nil, ErrComboInvalid
	}
	comboPicks := make([]cart.ComboPick, 0, len(picks))
	for _, pick := range picks {
		product, err := availableProduct(products, pick.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsComboEligible {
			return nil, fmt.Errorf("%w: product %d is not combo eligible", ErrComboInvalid, product.ID)
		}
		color, size, err := checkVariant(product, pick.Color, pick.Size)
		if err != nil {
			return nil, err
		}
		comboPicks = append(comboPicks, cart.ComboPick{
			ProductID: product.ID,
			Name:      product.Name,
			ImageURL:  product.ImageURL,
			Color:     color,
			Size:      size,
		})
	}
	items, err := cart.NewComboGroup(comboPicks, comboPrice.Decimal, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrComboInvalid, err)
	}
	return items, nil
}

func availableProduct(products map[uint]models.Product, id uint) (models.Product, error) {
	product, ok := products[id]
	if !ok || !product.IsActive {
		return models.Product{}, fmt.Errorf("%w: product %d", ErrProductUnavailable, id)
	}
	return product, nil
}

// checkVariant 颜色/尺码必须在商品可选范围内；商品未配置选项时忽略
func checkVariant(product models.Product, color, size string) (string, string, error) {
	color = strings.TrimSpace(color)
	size = strings.TrimSpace(size)
	if color != "" && len(product.Colors) > 0 && !product.Colors.Contains(color) {
		return "", "", fmt.Errorf("%w: color %q not offered for %s", ErrCartItemInvalid, color, product.Slug)
	}
	if size != "" && len(product.Sizes) > 0 && !product.Sizes.Contains(size) {
		return "", "", fmt.Errorf("%w: size %q not offered for %s", ErrCartItemInvalid, size, product.Slug)
	}
	return color, size, nil
}

func lineProductIDs(lines []CartLineInput) []uint {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

func toPicks(lines []CartLineInput) []ComboPickInput {
	picks := make([]ComboPickInput, 0, len(lines))
	for _, line := range lines {
		picks = append(picks, ComboPickInput{ProductID: line.ProductID, Color: line.Color, Size: line.Size})
	}
	return picks
}

func summarize(c cart.Cart) *CartSummary {
	return &CartSummary{
		Items:  c.Items,
		Groups: c.Groups(),
		Count:  c.Count(),
		Total:  models.NewMoneyFromDecimal(c.Total()),
	}
}
