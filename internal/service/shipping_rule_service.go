package service

import (
	"fmt"
	"strings"

	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

// ShippingRuleService 运费规则管理
type ShippingRuleService struct {
	repo repository.ShippingRuleRepository
}

// NewShippingRuleService 创建运费规则服务
func NewShippingRuleService(repo repository.ShippingRuleRepository) *ShippingRuleService {
	return &ShippingRuleService{repo: repo}
}

// ShippingRuleInput 创建/更新运费规则输入；MaxAmount 为空表示无上限
type ShippingRuleInput struct {
	Name      string        `json:"name"`
	MinAmount models.Money  `json:"min_amount"`
	MaxAmount *models.Money `json:"max_amount"`
	Price     models.Money  `json:"price"`
	SortOrder int           `json:"sort_order"`
}

// List 按匹配顺序列出规则
func (s *ShippingRuleService) List() ([]models.ShippingRule, error) {
	list, err := s.repo.ListOrdered()
	if err != nil {
		return nil, fmt.Errorf("%w: list shipping rules: %v", ErrPersistence, err)
	}
	return list, nil
}

// Create 创建规则
func (s *ShippingRuleService) Create(input ShippingRuleInput) (*models.ShippingRule, error) {
	rule := &models.ShippingRule{}
	if err := applyShippingRuleInput(rule, input); err != nil {
		return nil, err
	}
	if err := s.ensureNoOverlap(rule); err != nil {
		return nil, err
	}
	if err := s.repo.Create(rule); err != nil {
		return nil, fmt.Errorf("%w: create shipping rule: %v", ErrPersistence, err)
	}
	return rule, nil
}

// Update 更新规则
func (s *ShippingRuleService) Update(id uint, input ShippingRuleInput) (*models.ShippingRule, error) {
	rule, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := applyShippingRuleInput(rule, input); err != nil {
		return nil, err
	}
	if err := s.ensureNoOverlap(rule); err != nil {
		return nil, err
	}
	if err := s.repo.Update(rule); err != nil {
		return nil, fmt.Errorf("%w: update shipping rule: %v", ErrPersistence, err)
	}
	return rule, nil
}

// Delete 删除规则
func (s *ShippingRuleService) Delete(id uint) error {
	if _, err := s.get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("%w: delete shipping rule: %v", ErrPersistence, err)
	}
	return nil
}

func (s *ShippingRuleService) get(id uint) (*models.ShippingRule, error) {
	rule, err := s.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: get shipping rule: %v", ErrPersistence, err)
	}
	if rule == nil {
		return nil, ErrShippingNotFound
	}
	return rule, nil
}

// ensureNoOverlap 区间为闭区间，与除自身外的任一规则相交即拒绝
func (s *ShippingRuleService) ensureNoOverlap(rule *models.ShippingRule) error {
	existing, err := s.repo.ListOrdered()
	if err != nil {
		return fmt.Errorf("%w: list shipping rules: %v", ErrPersistence, err)
	}
	for _, other := range existing {
		if other.ID == rule.ID {
			continue
		}
		if shippingRangesOverlap(rule, &other) {
			return fmt.Errorf("%w: conflicts with rule %d", ErrShippingRuleOverlap, other.ID)
		}
	}
	return nil
}

func shippingRangesOverlap(a, b *models.ShippingRule) bool {
	if a.MaxAmount != nil && a.MaxAmount.LessThan(b.MinAmount.Decimal) {
		return false
	}
	if b.MaxAmount != nil && b.MaxAmount.LessThan(a.MinAmount.Decimal) {
		return false
	}
	return true
}

func applyShippingRuleInput(rule *models.ShippingRule, input ShippingRuleInput) error {
	if input.MinAmount.IsNegative() || input.Price.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrShippingRuleInvalid)
	}
	if input.MaxAmount != nil && input.MaxAmount.LessThan(input.MinAmount.Decimal) {
		return fmt.Errorf("%w: max_amount must not be below min_amount", ErrShippingRuleInvalid)
	}
	rule.Name = strings.TrimSpace(input.Name)
	rule.MinAmount = models.NewMoneyFromDecimal(input.MinAmount.Decimal)
	rule.Price = models.NewMoneyFromDecimal(input.Price.Decimal)
	rule.SortOrder = input.SortOrder
	rule.MaxAmount = nil
	if input.MaxAmount != nil {
		upper := models.NewMoneyFromDecimal(input.MaxAmount.Decimal)
		rule.MaxAmount = &upper
	}
	return nil
}
