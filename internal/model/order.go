package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Conventional order statuses. Status is free text; any value may follow any other.
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusAssembled  = "assembled"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var Statuses = []string{StatusNew, StatusProcessing, StatusAssembled, StatusDelivered, StatusCancelled}

type Order struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	UserID        *uint        `gorm:"index" json:"user_id"`
	User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderDate     time.Time    `gorm:"not null;index" json:"order_date"`
	DeliveryDate  *time.Time   `json:"delivery_date"`
	PickupPointID *uint        `gorm:"index" json:"pickup_point_id"`
	PickupPoint   *PickupPoint `gorm:"foreignKey:PickupPointID" json:"pickup_point,omitempty"`
	ReceiveCode   *int         `json:"receive_code"`
	Status        string       `gorm:"type:varchar(20);not null;default:''" json:"status"`

	// Relasi
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem is one line of an order. It has no lifecycle of its own.
type OrderItem struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	OrderID        uint     `gorm:"not null;index" json:"order_id"`
	ProductArticle string   `gorm:"type:varchar(20);not null;index" json:"product_article"`
	Product        *Product `gorm:"foreignKey:ProductArticle;references:Article" json:"product,omitempty"`
	Quantity       int      `gorm:"not null" json:"quantity"`
}

// Article is the display code of the order, derived from its loaded items,
// e.g. "A112T4×2, F635R4×1". Orders without items fall back to "ORD-{id}".
func (o *Order) Article() string {
	if len(o.Items) == 0 {
		return fmt.Sprintf("ORD-%d", o.ID)
	}
	parts := make([]string, len(o.Items))
	for i, it := range o.Items {
		parts[i] = fmt.Sprintf("%s×%d", it.ProductArticle, it.Quantity)
	}
	return strings.Join(parts, ", ")
}

// Total sums discounted line prices. Items whose product is not loaded are skipped.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		if it.Product == nil {
			continue
		}
		total = total.Add(it.Product.FinalPrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// IsTerminal reports whether the status is delivered or cancelled. Used for
// display only, no transition rules hang off it.
func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}

func IsTerminalStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case StatusDelivered, StatusCancelled, "доставлен", "выполнен", "отменен", "отменён":
		return true
	}
	return false
}

// OrderResponse for API responses
type OrderResponse struct {
	Order
	Article    string          `json:"article"`
	Total      decimal.Decimal `json:"total"`
	IsTerminal bool            `json:"is_terminal"`
}

// ToResponse converts Order to OrderResponse
func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		Order:      *o,
		Article:    o.Article(),
		Total:      o.Total(),
		IsTerminal: o.IsTerminal(),
	}
}
