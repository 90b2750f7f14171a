// user.go - Defines the User model for the database

package models

import "time"

// User owns categories and products. Deleting a user removes both.
type User struct {
	ID             uint       `gorm:"primaryKey"`
	Name           string     `gorm:"size:100;index"`
	Email          string     `gorm:"size:100;uniqueIndex;not null"`
	ProfileImage   string     `gorm:"size:255;not null"` // Storage key or absolute URL
	HashedPassword string     `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Categories     []Category `gorm:"constraint:OnDelete:CASCADE;"`
	Products       []Product  `gorm:"constraint:OnDelete:CASCADE;"`
}
