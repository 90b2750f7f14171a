package models

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ProductQuery narrows and orders a product listing. Zero values mean "no filter".
type ProductQuery struct {
	CategoryID        *uint
	LowStockThreshold *int   // stock strictly below this value
	Search            string // case-insensitive match on name or description
	OrderBy           string // ignored unless listed in sortableColumns
	Desc              bool
	Page              int // 1-based
	PageSize          int
}

// sortableColumns are the product columns a listing may be ordered by.
var sortableColumns = map[string]string{
	"name":        "products.name",
	"price":       "products.price",
	"stock":       "products.stock",
	"sales":       "products.sales",
	"code":        "products.code",
	"description": "products.description",
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

func (r *ProductsRepository) Create(ctx context.Context, product *Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return err
	}
	return r.loadCategory(ctx, product)
}

func (r *ProductsRepository) FindOwned(ctx context.Context, id, ownerID uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// List returns one page of the owner's products matching q, plus the number of
// matching rows across all pages.
func (r *ProductsRepository) List(ctx context.Context, ownerID uint, q ProductQuery) ([]Product, int64, error) {
	products := []Product{}
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{}).Where("products.user_id = ?", ownerID)

	// Filter
	if q.CategoryID != nil {
		query = query.Where("products.category_id = ?", *q.CategoryID)
	}
	if q.LowStockThreshold != nil {
		query = query.Where("products.stock < ?", *q.LowStockThreshold)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR LOWER(COALESCE(products.description, '')) LIKE ?)", pattern, pattern)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if column, ok := sortableColumns[q.OrderBy]; ok {
		if q.Desc {
			query = query.Order(column + " DESC")
		} else {
			query = query.Order(column + " ASC")
		}
	}
	query = query.Order("products.id ASC")

	// Apply pagination
	if err := query.Preload("Category").
		Scopes(Paging(q.Page, q.PageSize)).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update saves every column of an owned product.
func (r *ProductsRepository) Update(ctx context.Context, product *Product) error {
	err := r.db.WithContext(ctx).
		Model(product).
		Where("user_id = ?", product.UserID).
		Select("*").
		Omit("id", "user_id", "created_at", "Category").
		Updates(product).Error
	if err != nil {
		return err
	}
	return r.loadCategory(ctx, product)
}

// Delete removes an owned product and returns the removed row.
func (r *ProductsRepository) Delete(ctx context.Context, id, ownerID uint) (*Product, error) {
	var deleted Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&deleted).Error; err != nil {
			return translate(err)
		}
		return tx.Delete(&Product{}, deleted.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// CodeExists reports whether the owner already has a product with code, other
// than the product with id excludeID (0 excludes nothing).
func (r *ProductsRepository) CodeExists(ctx context.Context, ownerID uint, code string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Product{}).Where("user_id = ? AND code = ?", ownerID, code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProductsRepository) loadCategory(ctx context.Context, product *Product) error {
	product.Category = nil
	if product.CategoryID == nil {
		return nil
	}
	var category Category
	if err := r.db.WithContext(ctx).First(&category, *product.CategoryID).Error; err != nil {
		return translate(err)
	}
	product.Category = &category
	return nil
}

// Paging limits a query to one page. Page counts from 1; the size is kept
// within 1..100.
func Paging(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		if pageSize <= 0 {
			pageSize = 10
		} else if pageSize > 100 {
			pageSize = 100
		}
		offset := (page - 1) * pageSize
		return db.Offset(offset).Limit(pageSize)
	}
}
