package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠码
type Coupon struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	Code           string         `gorm:"uniqueIndex;not null" json:"code"`                              // 优惠码（大写存储）
	DiscountType   string         `gorm:"type:varchar(20);not null" json:"discount_type"`                // PERCENTAGE / FIXED
	DiscountValue  Money          `gorm:"type:decimal(20,2);not null" json:"discount_value"`             // 百分比或固定金额
	MinOrderAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"` // 使用门槛
	IsActive       bool           `gorm:"not null" json:"is_active"`                                     // 是否启用
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                                       // 过期时间（空表示长期）
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
