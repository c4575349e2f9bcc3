package model

import "github.com/shopspring/decimal"

// LargeDiscount is the discount percent above which a product is highlighted.
const LargeDiscount = 15

// Product is a catalog entry keyed by its business article code.
type Product struct {
	Article       string          `gorm:"type:varchar(20);primaryKey" json:"article"`
	Name          string          `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Unit          string          `gorm:"type:varchar(20);not null;default:''" json:"unit"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Supplier      string          `gorm:"type:varchar(100);not null;default:'';index" json:"supplier"`
	Manufacturer  string          `gorm:"type:varchar(100);not null;default:''" json:"manufacturer"`
	Category      string          `gorm:"type:varchar(50);not null;default:''" json:"category"`
	Discount      int             `gorm:"not null;default:0" json:"discount"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	Description   string          `gorm:"type:text;not null;default:''" json:"description"`
	ImagePath     *string         `gorm:"type:varchar(255)" json:"image_path,omitempty"`
}

// FinalPrice is the price after discount, rounded to kopecks.
func (p *Product) FinalPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price.Round(2)
	}
	factor := decimal.NewFromInt(int64(100 - p.Discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

func (p *Product) HasLargeDiscount() bool {
	return p.Discount > LargeDiscount
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// ProductResponse adds the computed display fields.
type ProductResponse struct {
	Product
	FinalPrice       decimal.Decimal `json:"final_price"`
	HasLargeDiscount bool            `json:"has_large_discount"`
	InStock          bool            `json:"in_stock"`
}

func (p *Product) ToResponse() ProductResponse {
	return ProductResponse{
		Product:          *p,
		FinalPrice:       p.FinalPrice(),
		HasLargeDiscount: p.HasLargeDiscount(),
		InStock:          p.InStock(),
	}
}
