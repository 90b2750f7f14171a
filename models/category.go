package models

import "time"

// Category groups products of a single owner. Deleting a category leaves its
// products in place with a null category.
type Category struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:50;index;not null"`
	Description *string `gorm:"type:text"`
	UserID      uint    `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Products    []Product `gorm:"constraint:OnDelete:SET NULL;"`
}

func (c *Category) TableName() string {
	return "categories"
}
