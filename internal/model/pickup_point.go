package model

import (
	"strings"

	"gorm.io/gorm"
)

// PickupPoint is a delivery address. Two addresses differing only in case or
// surrounding whitespace are the same point.
type PickupPoint struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	AddressKey string `gorm:"type:varchar(255);not null;default:''" json:"-"` // unique, see database.Migrate
}

// AddressKey returns the case-insensitive identity of an address.
func AddressKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// BeforeSave keeps the address trimmed and its key in sync
func (p *PickupPoint) BeforeSave(tx *gorm.DB) error {
	p.Address = strings.TrimSpace(p.Address)
	p.AddressKey = AddressKey(p.Address)
	return nil
}
