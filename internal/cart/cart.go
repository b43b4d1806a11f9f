// Package cart 购物车值类型。购物车保存在客户端，服务端只通过纯函数对其合并、校验与计价。
package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Item 购物车行
type Item struct {
	ProductID         uint            `json:"product_id"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	ImageURL          string          `json:"image_url,omitempty"`
	Color             string          `json:"color,omitempty"`
	Size              string          `json:"size,omitempty"`
	ComboGroupID      string          `json:"combo_group_id,omitempty"`
	OriginalProductID uint            `json:"original_product_id,omitempty"`
}

// Key 合并键。组合行额外按 ComboGroupID 区分，两个组合包含同一商品时互不合并。
type Key struct {
	ProductID    uint
	Color        string
	Size         string
	ComboGroupID string
}

// KeyOf 返回行的合并键
func KeyOf(item Item) Key {
	return Key{
		ProductID:    item.ProductID,
		Color:        strings.TrimSpace(item.Color),
		Size:         strings.TrimSpace(item.Size),
		ComboGroupID: strings.TrimSpace(item.ComboGroupID),
	}
}

// LineTotal 单行小计
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// InCombo 是否属于组合套装
func (i Item) InCombo() bool {
	return strings.TrimSpace(i.ComboGroupID) != ""
}

// Cart 购物车。所有操作返回新值，不修改原切片。
type Cart struct {
	Items []Item `json:"items"`
}

// New 由任意行构造购物车，重复键会被合并
func New(items ...Item) Cart {
	c := Cart{}
	for _, item := range items {
		c = c.AddItem(item)
	}
	return c
}

func (c Cart) clone() []Item {
	out := make([]Item, len(c.Items))
	copy(out, c.Items)
	return out
}

func (c Cart) indexOf(key Key) int {
	for i, item := range c.Items {
		if KeyOf(item) == key {
			return i
		}
	}
	return -1
}

// AddItem 加入购物车；同键行累加数量，数量非正按 1 处理。组合行原样追加。
func (c Cart) AddItem(item Item) Cart {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	items := c.clone()
	if item.InCombo() {
		return Cart{Items: append(items, item)}
	}
	if idx := c.indexOf(KeyOf(item)); idx >= 0 {
		items[idx].Quantity += item.Quantity
		return Cart{Items: items}
	}
	return Cart{Items: append(items, item)}
}

// RemoveItem 移除普通行；组合行只能通过 RemoveCombo 整组移除
func (c Cart) RemoveItem(key Key) Cart {
	if key.ComboGroupID != "" {
		return c
	}
	idx := c.indexOf(key)
	if idx < 0 {
		return c
	}
	items := c.clone()
	return Cart{Items: append(items[:idx], items[idx+1:]...)}
}

// UpdateQuantity 修改普通行数量；qty <= 0 等同移除
func (c Cart) UpdateQuantity(key Key, qty int) Cart {
	if key.ComboGroupID != "" {
		return c
	}
	if qty <= 0 {
		return c.RemoveItem(key)
	}
	idx := c.indexOf(key)
	if idx < 0 {
		return c
	}
	items := c.clone()
	items[idx].Quantity = qty
	return Cart{Items: items}
}

// Clear 清空
func (c Cart) Clear() Cart {
	return Cart{}
}

// Total 始终由行实时计算，不单独存储
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

// Count 商品件数
func (c Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// IsEmpty 是否为空
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
