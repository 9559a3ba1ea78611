package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-dashboard/internal/model"
)

// CategoryRepository manages the categories collection.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create stores category and assigns it a fresh id.
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	category.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", translate(err))
	}
	return nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name COLLATE NOCASE ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category. Projects labelled with it are left untouched.
func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("owner_id = ? AND id = ?", ownerID, id).Delete(&model.Category{})
	if res.Error != nil {
		return fmt.Errorf("delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
	}
	return nil
}
