package repository

import (
	"go-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	FindAll() ([]model.Order, error)
	FindByID(id uint) (*model.Order, error)
	Exists(id uint) (bool, error)
	Create(order *model.Order) error
	Update(id uint, changes map[string]interface{}) error
	Delete(id uint) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

// withAssociations preloads purchaser, pickup point and items with their products
func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("PickupPoint").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Preload("Items.Product")
}

func (r *orderRepo) FindAll() ([]model.Order, error) {
	var orders []model.Order
	err := withAssociations(r.db).Order("order_date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := withAssociations(r.db).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Exists(id uint) (bool, error) {
	var n int64
	err := r.db.Model(&model.Order{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Create inserts the order row only; associations are managed by their own repositories
func (r *orderRepo) Create(order *model.Order) error {
	return r.db.Omit(clause.Associations).Create(order).Error
}

func (r *orderRepo) Update(id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.Model(&model.Order{}).Where("id = ?", id).Updates(changes).Error
}

func (r *orderRepo) Delete(id uint) error {
	return r.db.Delete(&model.Order{}, id).Error
}
