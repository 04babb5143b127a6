package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrCategoryNotFound is returned when a category is not found,
// including when a product references a category id that does not exist.
var ErrCategoryNotFound = errors.New("category not found")

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// GetAllCategories returns every category ordered by name.
func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *CategoriesRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *CategoriesRepository) first(ctx context.Context, cond string, arg any) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts the category; an empty slug is derived from the name.
func (r *CategoriesRepository) CreateCategory(ctx context.Context, category *Category) error {
	return translateError(r.db.WithContext(ctx).Create(category).Error)
}
