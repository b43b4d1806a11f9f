package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                      // 主键
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`                         // 分类ID
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name            string         `gorm:"type:varchar(200);not null" json:"name"`                    // 名称
	Description     string         `gorm:"type:text" json:"description"`                              // 描述
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 售价
	ImageURL        string         `gorm:"type:varchar(500)" json:"image_url"`                        // 主图
	Images          StringArray    `gorm:"type:json" json:"images"`                                   // 图集
	Colors          StringArray    `gorm:"type:json" json:"colors"`                                   // 可选颜色（金、银、玫瑰金）
	Sizes           StringArray    `gorm:"type:json" json:"sizes"`                                    // 可选尺码（戒圈、链长）
	IsComboEligible bool           `gorm:"not null;default:false;index" json:"is_combo_eligible"`     // 可参与三件套组合
	IsActive        bool           `gorm:"not null;index" json:"is_active"`                           // 是否上架
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
