package models

// OrderItem 订单项快照
type OrderItem struct {
	ID                uint   `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID           uint   `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID         uint   `gorm:"index;not null" json:"product_id"`                         // 商品ID
	OriginalProductID uint   `gorm:"index" json:"original_product_id,omitempty"`               // 组合拆分前的商品ID
	ComboGroupID      string `gorm:"type:varchar(64);index" json:"combo_group_id,omitempty"`   // 三件套分组
	Name              string `gorm:"type:varchar(200);not null" json:"name"`                   // 名称快照
	Color             string `gorm:"type:varchar(60)" json:"color,omitempty"`                  // 颜色
	Size              string `gorm:"type:varchar(60)" json:"size,omitempty"`                   // 尺码
	Quantity          int    `gorm:"not null" json:"quantity"`                                 // 数量
	UnitPrice         Money  `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价快照
	TotalPrice        Money  `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
