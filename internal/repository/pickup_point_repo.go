package repository

import (
	"errors"

	"go-storefront/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PickupPointRepository interface {
	WithTx(tx *gorm.DB) PickupPointRepository
	FindAll() ([]model.PickupPoint, error)
	FindByID(id uint) (*model.PickupPoint, error)
	FindByAddress(address string) (*model.PickupPoint, error)
	FirstOrCreate(address string) (*model.PickupPoint, error)
}

type pickupPointRepo struct {
	db *gorm.DB
}

func NewPickupPointRepo(db *gorm.DB) PickupPointRepository {
	return &pickupPointRepo{db}
}

func (r *pickupPointRepo) WithTx(tx *gorm.DB) PickupPointRepository {
	return &pickupPointRepo{tx}
}

func (r *pickupPointRepo) FindAll() ([]model.PickupPoint, error) {
	var points []model.PickupPoint
	err := r.db.Order("address ASC, id ASC").Find(&points).Error
	return points, err
}

func (r *pickupPointRepo) FindByID(id uint) (*model.PickupPoint, error) {
	var point model.PickupPoint
	if err := r.db.First(&point, id).Error; err != nil {
		return nil, err
	}
	return &point, nil
}

// FindByAddress matches on the case-insensitive address key
func (r *pickupPointRepo) FindByAddress(address string) (*model.PickupPoint, error) {
	var point model.PickupPoint
	if err := r.db.Where("address_key = ?", model.AddressKey(address)).First(&point).Error; err != nil {
		return nil, err
	}
	return &point, nil
}

// FirstOrCreate resolves the point for address, inserting it when missing.
// A concurrent insert of the same key loses the race silently on the unique
// index and the winner's row is returned.
func (r *pickupPointRepo) FirstOrCreate(address string) (*model.PickupPoint, error) {
	point, err := r.FindByAddress(address)
	if err == nil {
		return point, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := model.PickupPoint{Address: address}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.FindByAddress(address)
}
