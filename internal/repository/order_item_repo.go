package repository

import (
	"go-storefront/internal/model"

	"gorm.io/gorm"
)

type OrderItemRepository interface {
	WithTx(tx *gorm.DB) OrderItemRepository
	FindByOrderID(orderID uint) ([]model.OrderItem, error)
	CreateBatch(items []model.OrderItem) error
	DeleteByOrderID(orderID uint) error
}

type orderItemRepo struct {
	db *gorm.DB
}

func NewOrderItemRepo(db *gorm.DB) OrderItemRepository {
	return &orderItemRepo{db}
}

func (r *orderItemRepo) WithTx(tx *gorm.DB) OrderItemRepository {
	return &orderItemRepo{tx}
}

func (r *orderItemRepo) FindByOrderID(orderID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.db.Preload("Product").
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *orderItemRepo) CreateBatch(items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Omit("Product").Create(&items).Error
}

func (r *orderItemRepo) DeleteByOrderID(orderID uint) error {
	return r.db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error
}
