package constants

// 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 优惠类型
const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)

// 设置键
const (
	SettingKeyStoreConfig = "store_config"
)

// 店铺设置字段
const (
	SettingFieldComboPrice     = "combo_price"
	SettingFieldDeliveryWindow = "delivery_window"
	SettingFieldPickupEnabled  = "pickup_enabled"
	SettingFieldPickupAddress  = "pickup_address"
	SettingFieldCurrency       = "currency"
)

// 缓存键
const (
	CacheKeyStoreSettings = "store:settings"
	CacheKeyCategories    = "catalog:categories"
	CacheKeyBanners       = "catalog:banners"
)

// 组合套装固定件数
const ComboSize = 3

// Stripe 事件类型
const (
	StripeEventCheckoutCompleted = "checkout.session.completed"
)

// 后台角色
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// 队列
const (
	QueueDefault = "default"
	QueueMail    = "mail"
)

// 异步任务类型
const (
	TaskOrderConfirmationEmail = "order:confirmation_email"
	TaskOrderStatusEmail       = "order:status_email"
)
