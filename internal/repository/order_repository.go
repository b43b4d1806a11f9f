package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	CreateIfAbsent(order *models.Order) (bool, error)
	GetByID(id uint) (*models.Order, error)
	GetBySessionID(sessionID string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	TransitionStatus(id uint, from, to string, at time.Time) (bool, error)
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateIfAbsent 以 stripe_session_id 唯一约束实现插入即幂等。
// 返回 false 表示该 session 已有订单，此时不写入任何订单项。
func (r *GormOrderRepository) CreateIfAbsent(order *models.Order) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		result := tx.Omit("Items").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "stripe_session_id"}},
				DoNothing: true,
			}).
			Create(order)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		created = true
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// GetByID 获取订单及订单项
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetBySessionID 按 Stripe Session 获取订单
func (r *GormOrderRepository) GetBySessionID(sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("stripe_session_id = ?", sessionID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	query = applyKeywordSearch(query, r.db, filter.OrderNo, "order_no")
	if email := strings.TrimSpace(filter.CustomerEmail); email != "" {
		query = query.Where("LOWER(customer_email) = ?", strings.ToLower(email))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionStatus 仅当当前状态为 from 时更新为 to，返回是否生效
func (r *GormOrderRepository) TransitionStatus(id uint, from, to string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case constants.OrderStatusCompleted:
		updates["completed_at"] = at
	case constants.OrderStatusCancelled:
		updates["cancelled_at"] = at
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
