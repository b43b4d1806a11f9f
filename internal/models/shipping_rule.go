package models

import "time"

// ShippingRule 运费规则：订单金额区间 -> 运费
type ShippingRule struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	Name      string    `gorm:"type:varchar(120)" json:"name"`                           // 后台名称
	MinAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"` // 区间下限（含）
	MaxAmount *Money    `gorm:"type:decimal(20,2)" json:"max_amount"`                    // 区间上限（含，空表示无上限）
	Price     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`      // 运费
	SortOrder int       `gorm:"default:0;index" json:"sort_order"`                       // 匹配顺序
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (ShippingRule) TableName() string {
	return "shipping_rules"
}
