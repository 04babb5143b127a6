package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductFilters struct {
	CategoryID string
	Search     string
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// GetFilteredProducts returns products newest first.
// A zero limit or offset leaves that bound off the query.
func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, error) {
	var products []Product

	query := r.db.WithContext(ctx).Model(&Product{})

	// Filter
	if filters.CategoryID != "" {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.Search != "" {
		// sqlite's LOWER folds ASCII only; postgres folds the full Unicode range.
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(filters.Search))+"%")
	}

	query = query.Order("created_at DESC")

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ProductsRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *ProductsRepository) first(ctx context.Context, cond string, arg any) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// CreateProduct inserts the product with a slug derived from its name.
// Generated fields (id, timestamps) are written back into p.
func (r *ProductsRepository) CreateProduct(ctx context.Context, p *Product) error {
	p.Slug = Slugify(p.Name)
	p.SKU = nullIfEmpty(p.SKU)
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

// UpdateProduct applies the non-nil fields of patch and returns the stored row.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	updates := map[string]any{
		"updated_at": time.Now(),
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
		updates["slug"] = Slugify(*patch.Name)
	}
	if patch.SKU != nil {
		updates["sku"] = nullIfEmpty(patch.SKU)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = patch.Price.Round(0)
	}
	if patch.Unit != nil {
		updates["unit"] = *patch.Unit
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.CategoryID != nil {
		updates["category_id"] = *patch.CategoryID
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	var product Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return tx.Where("id = ?", id).First(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes the row and reports how many rows went away.
// Deleting an unknown id is not an error here.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Product{})
	return res.RowsAffected, res.Error
}

// GetStats scans the stock column of every product.
func (r *ProductsRepository) GetStats(ctx context.Context) (ProductStats, error) {
	var stocks []int
	if err := r.db.WithContext(ctx).Model(&Product{}).Pluck("stock", &stocks).Error; err != nil {
		return ProductStats{}, err
	}

	stats := ProductStats{Total: len(stocks)}
	for _, s := range stocks {
		if s > 0 {
			stats.InStock++
		}
	}
	stats.OutOfStock = stats.Total - stats.InStock
	return stats, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
