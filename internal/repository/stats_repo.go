package repository

import (
	"go-storefront/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatsRepository interface {
	GetCatalogStats() (*CatalogStats, error)
	CountOrdersByStatus() ([]StatusCount, error)
}

// CatalogStats untuk overview stats
type CatalogStats struct {
	TotalProducts      int64           `json:"total_products"`
	OutOfStockCount    int64           `json:"out_of_stock_count"`
	LargeDiscountCount int64           `json:"large_discount_count"`
	StockValuation     decimal.Decimal `json:"stock_valuation"`
}

// StatusCount is the number of orders carrying one status value
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db}
}

func (r *statsRepo) GetCatalogStats() (*CatalogStats, error) {
	var stats CatalogStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Product{}).Where("stock_quantity <= ?", 0).Count(&stats.OutOfStockCount).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&model.Product{}).Where("discount > ?", model.LargeDiscount).Count(&stats.LargeDiscountCount).Error; err != nil {
		return nil, err
	}

	// SUM of stock * price
	var valuation decimal.NullDecimal
	if err := r.db.Model(&model.Product{}).
		Select("SUM(stock_quantity * price)").
		Row().Scan(&valuation); err != nil {
		return nil, err
	}
	if valuation.Valid {
		stats.StockValuation = valuation.Decimal.Round(2)
	}

	return &stats, nil
}

func (r *statsRepo) CountOrdersByStatus() ([]StatusCount, error) {
	var results []StatusCount
	err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status ASC").
		Scan(&results).Error
	return results, err
}
