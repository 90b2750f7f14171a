package models

import (
	"context"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) Create(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// ListByOwner returns the owner's categories ordered by id.
func (r *CategoriesRepository) ListByOwner(ctx context.Context, ownerID uint) ([]Category, error) {
	categories := []Category{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) FindOwned(ctx context.Context, id, ownerID uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// Delete removes an owned category and returns the removed row. Products that
// referenced it keep existing with a null category.
func (r *CategoriesRepository) Delete(ctx context.Context, id, ownerID uint) (*Category, error) {
	var deleted Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&deleted).Error; err != nil {
			return translate(err)
		}
		// Products stay, without a category.
		if err := tx.Model(&Product{}).
			Where("category_id = ?", deleted.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&Category{}, deleted.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
