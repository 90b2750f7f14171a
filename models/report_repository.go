package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateRange bounds a report by product creation time. Nil ends are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (dr DateRange) scope(db *gorm.DB) *gorm.DB {
	if dr.Start != nil {
		db = db.Where("products.created_at >= ?", dr.Start.UTC())
	}
	if dr.End != nil {
		db = db.Where("products.created_at <= ?", dr.End.UTC())
	}
	return db
}

type DashboardMetrics struct {
	TotalProducts    int64
	LowStockProducts int64
	TotalStockValue  decimal.Decimal
	TotalSales       int64
	TotalRevenue     decimal.Decimal
}

type CategoryCount struct {
	Category     string
	ProductCount int64
}

type ProductSales struct {
	ID        uint
	Name      string
	TotalSold int64
}

type CategorySales struct {
	Category  string
	TotalSold int64
}

type SalesPoint struct {
	Date       string // YYYY-MM-DD
	TotalSales int64
}

// ReportsRepository runs the read-only aggregates behind the reports endpoints.
type ReportsRepository struct {
	db *gorm.DB
}

func NewReportsRepository(db *gorm.DB) *ReportsRepository {
	return &ReportsRepository{db: db}
}

func (r *ReportsRepository) owned(ctx context.Context, ownerID uint, dr DateRange) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Product{}).
		Where("products.user_id = ?", ownerID).
		Scopes(dr.scope)
}

func (r *ReportsRepository) DashboardMetrics(ctx context.Context, ownerID uint, dr DateRange) (*DashboardMetrics, error) {
	var m DashboardMetrics
	err := r.owned(ctx, ownerID, dr).
		Select(`COUNT(products.id) AS total_products,
			COALESCE(SUM(CASE WHEN products.stock <= ? THEN 1 ELSE 0 END), 0) AS low_stock_products,
			COALESCE(SUM(products.stock * products.price), 0) AS total_stock_value,
			COALESCE(SUM(products.sales), 0) AS total_sales,
			COALESCE(SUM(products.sales * products.price), 0) AS total_revenue`, LowStockThreshold).
		Scan(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ProductsByCategory counts products per category name. Uncategorised products
// and empty categories are left out.
func (r *ReportsRepository) ProductsByCategory(ctx context.Context, ownerID uint, dr DateRange) ([]CategoryCount, error) {
	rows := []CategoryCount{}
	err := r.owned(ctx, ownerID, dr).
		Select("categories.name AS category, COUNT(products.id) AS product_count").
		Joins("JOIN categories ON categories.id = products.category_id").
		Group("categories.name").
		Order("categories.name").
		Scan(&rows).Error
	return rows, err
}

// MostSoldProducts ranks products by sales, highest first, ties by id.
func (r *ReportsRepository) MostSoldProducts(ctx context.Context, ownerID uint, dr DateRange, limit int) ([]ProductSales, error) {
	rows := []ProductSales{}
	err := r.owned(ctx, ownerID, dr).
		Select("products.id AS id, products.name AS name, COALESCE(SUM(products.sales), 0) AS total_sold").
		Group("products.id, products.name").
		Order("total_sold DESC").
		Order("products.id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// MostSoldCategories ranks category names by summed sales, highest first, ties
// by name.
func (r *ReportsRepository) MostSoldCategories(ctx context.Context, ownerID uint, dr DateRange, limit int) ([]CategorySales, error) {
	rows := []CategorySales{}
	err := r.owned(ctx, ownerID, dr).
		Select("categories.name AS category, COALESCE(SUM(products.sales), 0) AS total_sold").
		Joins("JOIN categories ON categories.id = products.category_id").
		Group("categories.name").
		Order("total_sold DESC").
		Order("categories.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SalesOverTime sums sales per creation date, oldest first.
func (r *ReportsRepository) SalesOverTime(ctx context.Context, ownerID uint, dr DateRange) ([]SalesPoint, error) {
	day := "DATE(products.created_at)"
	if r.db.Dialector.Name() == "postgres" {
		day = "TO_CHAR(DATE(products.created_at), 'YYYY-MM-DD')"
	}

	rows := []SalesPoint{}
	err := r.owned(ctx, ownerID, dr).
		Select(day + " AS date, COALESCE(SUM(products.sales), 0) AS total_sales").
		Group(day).
		Order(day).
		Scan(&rows).Error
	return rows, err
}

// LowStock lists the owner's products at or under the low stock threshold,
// lowest stock first.
func (r *ReportsRepository) LowStock(ctx context.Context, ownerID uint) ([]Product, error) {
	products := []Product{}
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND stock <= ?", ownerID, LowStockThreshold).
		Order("stock ASC").
		Order("id ASC").
		Find(&products).Error
	return products, err
}
