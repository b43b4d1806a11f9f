package repository

import "time"

// ProductListFilter 商品列表过滤条件
type ProductListFilter struct {
	Page          int
	PageSize      int
	CategoryID    uint
	CategorySlug  string
	Search        string
	OnlyActive    bool
	ComboEligible bool
	WithCategory  bool
}

// CategoryListFilter 分类列表过滤条件
type CategoryListFilter struct {
	OnlyActive bool
}

// CouponListFilter 优惠码列表过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
	IsActive *bool
}

// BannerListFilter 轮播图列表过滤条件
type BannerListFilter struct {
	Page       int
	PageSize   int
	OnlyActive bool
}

// OrderListFilter 订单列表过滤条件
type OrderListFilter struct {
	Page          int
	PageSize      int
	Status        string
	OrderNo       string
	CustomerEmail string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}
