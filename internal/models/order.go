package models

import "time"

// Order 订单表，仅由支付 webhook 创建
type Order struct {
	ID              uint        `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo         string      `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	StripeSessionID string      `gorm:"uniqueIndex;not null" json:"stripe_session_id"`                // Stripe Checkout Session ID（幂等键）
	PaymentIntentID string      `gorm:"type:varchar(120);index" json:"payment_intent_id,omitempty"`   // Stripe PaymentIntent ID
	CustomerName    string      `gorm:"type:varchar(120);not null" json:"customer_name"`              // 收件人
	CustomerEmail   string      `gorm:"type:varchar(200);not null;index" json:"customer_email"`       // 邮箱
	CustomerPhone   string      `gorm:"type:varchar(40)" json:"customer_phone,omitempty"`             // 电话
	IsPickup        bool        `gorm:"not null;default:false" json:"is_pickup"`                      // 是否自提
	ShippingAddress JSON        `gorm:"type:json" json:"shipping_address"`                            // 地址快照
	SubtotalAmount  Money       `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"` // 商品小计
	DiscountAmount  Money       `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	ShippingCost    Money       `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"`   // 运费
	TotalAmount     Money       `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	Currency        string      `gorm:"type:varchar(10);not null" json:"currency"`                    // 币种
	CouponCode      string      `gorm:"type:varchar(64)" json:"coupon_code,omitempty"`                // 使用的优惠码
	Status          string      `gorm:"type:varchar(20);not null;index" json:"status"`                // pending / completed / cancelled
	CompletedAt     *time.Time  `gorm:"index" json:"completed_at,omitempty"`                          // 完成时间
	CancelledAt     *time.Time  `gorm:"index" json:"cancelled_at,omitempty"`                          // 取消时间
	CreatedAt       time.Time   `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time   `json:"updated_at"`                                                   // 更新时间
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`                    // 订单项快照
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
