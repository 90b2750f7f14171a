// seed.go - Demo catalogue for local development

package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"go-inventory-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var seedCategories = []string{
	"Electronics", "Books", "Clothing", "Food",
	"Toys", "Sports", "Furniture", "Beauty",
}

type seedProduct struct {
	name     string
	price    string
	stock    int
	sales    int
	category int // index into seedCategories
	created  string
}

var seedProducts = []seedProduct{
	{"Wireless Mouse", "25.99", 100, 15, 0, "2024-11-01T09:00:00Z"},
	{"Gaming Keyboard", "49.99", 50, 10, 0, "2024-11-02T10:30:00Z"},
	{"Noise Cancelling Headphones", "199.99", 30, 8, 0, "2024-11-03T12:15:00Z"},
	{"E-Reader", "129.99", 20, 12, 1, "2024-11-04T14:00:00Z"},
	{"Classic Novel", "9.99", 200, 50, 1, "2024-11-05T15:45:00Z"},
	{"Stylish Backpack", "39.99", 70, 20, 2, "2024-11-06T17:30:00Z"},
	{"Running Shoes", "89.99", 60, 30, 2, "2024-11-07T09:15:00Z"},
	{"Organic Coffee Beans", "14.99", 80, 35, 3, "2024-11-09T14:20:00Z"},
	{"Chocolate Bar Pack", "12.99", 120, 60, 3, "2024-11-10T16:50:00Z"},
	{"RC Drone", "99.99", 40, 15, 4, "2024-11-11T09:00:00Z"},
	{"Toy Building Blocks", "29.99", 90, 40, 4, "2024-11-12T10:30:00Z"},
	{"Soccer Ball", "24.99", 110, 50, 5, "2024-11-13T12:00:00Z"},
	{"Treadmill", "499.99", 9, 3, 5, "2024-10-28T09:00:00Z"},
	{"Office Desk", "149.99", 8, 8, 6, "2024-11-15T15:30:00Z"},
	{"Office Chair", "99.99", 45, 20, 6, "2024-11-16T09:00:00Z"},
	{"Lipstick", "14.99", 100, 30, 7, "2024-10-17T11:30:00Z"},
	{"Skincare Set", "39.99", 60, 15, 7, "2024-10-18T13:00:00Z"},
	{"Smartphone", "699.99", 5, 5, 0, "2024-10-22T09:30:00Z"},
}

// Seed fills the account of an existing user with demo categories and
// products. Accounts that already have categories are left alone.
func Seed(db *gorm.DB, email string) error {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed: no user with email %s", email)
		}
		return err
	}

	var existing int64
	if err := db.Model(&models.Category{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Printf("seed: %s already has %d categories, skipping", email, existing)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		categories := make([]models.Category, len(seedCategories))
		for i, name := range seedCategories {
			categories[i] = models.Category{Name: name, UserID: user.ID}
		}
		if err := tx.Create(&categories).Error; err != nil {
			return err
		}

		for i, p := range seedProducts {
			created, err := time.Parse(time.RFC3339, p.created)
			if err != nil {
				return err
			}
			categoryID := categories[p.category].ID
			product := models.Product{
				Name:       p.name,
				Price:      decimal.RequireFromString(p.price),
				Stock:      p.stock,
				Sales:      p.sales,
				Code:       fmt.Sprintf("PROD-%d", i+1),
				CategoryID: &categoryID,
				UserID:     user.ID,
				CreatedAt:  created,
				UpdatedAt:  created,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		}

		log.Printf("seed: added %d categories and %d products for %s", len(categories), len(seedProducts), email)
		return nil
	})
}
