package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the inclusive stock level at which a product counts as low.
const LowStockThreshold = 10

// Product is a stock item of a single owner. Code is not unique at the storage
// level.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:100;index;not null"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null"`
	Image       *string         `gorm:"size:255"` // Storage key or absolute URL
	Sales       int             `gorm:"not null;default:0"`
	Code        string          `gorm:"size:50;not null;index"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category
	UserID      uint `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) TableName() string {
	return "products"
}

// IsLowStock reports whether the product is at or below the low stock threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= LowStockThreshold
}
