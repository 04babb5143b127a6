package models_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/storefront/app/database/dbtest"
	"github.com/mytheresa/storefront/models"
)

func TestCategoriesRepository(t *testing.T) {
	repo := models.NewCategoriesRepository(dbtest.New(t))
	ctx := context.Background()

	icon := "fas fa-carrot"
	for _, c := range []*models.Category{
		{Name: "Vegetables", Icon: &icon},
		{Name: "Beverages", Slug: "drinks"},
		{Name: "Dairy & Eggs"},
	} {
		require.NoError(t, repo.CreateCategory(ctx, c))
		assert.NotEmpty(t, c.ID)
	}

	all, err := repo.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Beverages", all[0].Name)
	assert.Equal(t, "Dairy & Eggs", all[1].Name)
	assert.Equal(t, "Vegetables", all[2].Name)

	t.Run("slug derived when empty", func(t *testing.T) {
		c, err := repo.GetBySlug(ctx, "dairy-eggs")
		require.NoError(t, err)
		assert.Equal(t, "Dairy & Eggs", c.Name)
	})

	t.Run("explicit slug kept", func(t *testing.T) {
		c, err := repo.GetBySlug(ctx, "drinks")
		require.NoError(t, err)

		byID, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Beverages", byID.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrCategoryNotFound)
	})

	t.Run("duplicate name", func(t *testing.T) {
		err := repo.CreateCategory(ctx, &models.Category{Name: "Vegetables", Slug: "veg-2"})
		assert.ErrorIs(t, err, models.ErrDuplicate)
	})
}
