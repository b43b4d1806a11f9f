package cart

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComboSize 三件套件数
const ComboSize = 3

var (
	ErrComboSize     = errors.New("combo requires exactly 3 items")
	ErrComboGroupID  = errors.New("combo group id is required")
	ErrComboExists   = errors.New("combo group already in cart")
	ErrComboMismatch = errors.New("combo items belong to different groups")
	ErrComboPrice    = errors.New("combo price must be positive")
)

// ComboPick 顾客选择的组合商品
type ComboPick struct {
	ProductID uint
	Name      string
	ImageURL  string
	Color     string
	Size      string
}

// Group 按组合分组后的展示单元；普通行各自成组
type Group struct {
	ComboGroupID string `json:"combo_group_id,omitempty"`
	Items        []Item `json:"items"`
}

// NewComboGroupID 生成组合分组 ID
func NewComboGroupID() string {
	return "combo_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewComboGroup 把组合价均摊到 3 件商品，最后一件吸收舍入差额，合计恰好等于组合价
func NewComboGroup(picks []ComboPick, comboPrice decimal.Decimal, groupID string) ([]Item, error) {
	if len(picks) != ComboSize {
		return nil, ErrComboSize
	}
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, ErrComboGroupID
	}
	if !comboPrice.IsPositive() {
		return nil, ErrComboPrice
	}
	share := comboPrice.Div(decimal.NewFromInt(ComboSize)).RoundDown(2)
	items := make([]Item, 0, ComboSize)
	allocated := decimal.Zero
	for i, pick := range picks {
		price := share
		if i == ComboSize-1 {
			price = comboPrice.Sub(allocated).Round(2)
		}
		allocated = allocated.Add(price)
		items = append(items, Item{
			ProductID:         pick.ProductID,
			Name:              pick.Name,
			UnitPrice:         price,
			Quantity:          1,
			ImageURL:          pick.ImageURL,
			Color:             pick.Color,
			Size:              pick.Size,
			ComboGroupID:      groupID,
			OriginalProductID: pick.ProductID,
		})
	}
	return items, nil
}

// AddCombo 整组加入
func (c Cart) AddCombo(items []Item) (Cart, error) {
	if len(items) != ComboSize {
		return c, ErrComboSize
	}
	groupID := strings.TrimSpace(items[0].ComboGroupID)
	if groupID == "" {
		return c, ErrComboGroupID
	}
	for _, item := range items[1:] {
		if strings.TrimSpace(item.ComboGroupID) != groupID {
			return c, ErrComboMismatch
		}
	}
	for _, existing := range c.Items {
		if existing.ComboGroupID == groupID {
			return c, ErrComboExists
		}
	}
	out := c.clone()
	for _, item := range items {
		item.Quantity = 1
		out = append(out, item)
	}
	return Cart{Items: out}, nil
}

// RemoveCombo 整组移除
func (c Cart) RemoveCombo(groupID string) Cart {
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return c
	}
	out := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ComboGroupID != groupID {
			out = append(out, item)
		}
	}
	return Cart{Items: out}
}

// Groups 按加入顺序分组
func (c Cart) Groups() []Group {
	groups := make([]Group, 0, len(c.Items))
	index := make(map[string]int)
	for _, item := range c.Items {
		if !item.InCombo() {
			groups = append(groups, Group{Items: []Item{item}})
			continue
		}
		if i, ok := index[item.ComboGroupID]; ok {
			groups[i].Items = append(groups[i].Items, item)
			continue
		}
		index[item.ComboGroupID] = len(groups)
		groups = append(groups, Group{ComboGroupID: item.ComboGroupID, Items: []Item{item}})
	}
	return groups
}

// ValidateCombos 校验每个组合恰好 3 行且数量为 1
func (c Cart) ValidateCombos() error {
	counts := make(map[string]int)
	for _, item := range c.Items {
		if !item.InCombo() {
			continue
		}
		if item.Quantity != 1 {
			return ErrComboSize
		}
		counts[item.ComboGroupID]++
	}
	for _, n := range counts {
		if n != ComboSize {
			return ErrComboSize
		}
	}
	return nil
}
