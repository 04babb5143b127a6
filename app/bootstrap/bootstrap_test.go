package bootstrap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/storefront/app/auth"
	"github.com/mytheresa/storefront/app/bootstrap"
	"github.com/mytheresa/storefront/app/database/dbtest"
	"github.com/mytheresa/storefront/models"
)

func newSeeder(t *testing.T) (*bootstrap.Seeder, *models.AdminsRepository, *models.CategoriesRepository) {
	db := dbtest.New(t)
	admins := models.NewAdminsRepository(db)
	categories := models.NewCategoriesRepository(db)
	return bootstrap.NewSeeder(admins, categories), admins, categories
}

func TestSeed(t *testing.T) {
	seeder, admins, categories := newSeeder(t)
	ctx := context.Background()

	res, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, res.AdminCreated)
	assert.Equal(t, len(bootstrap.DefaultCategories), res.CategoriesCreated)

	admin, err := admins.GetByUsername(ctx, bootstrap.DefaultAdminUsername)
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.VerifyPassword(bootstrap.DefaultAdminPassword, admin.Password))

	all, err := categories.GetAllCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	dairy, err := categories.GetBySlug(ctx, "dairy-eggs")
	require.NoError(t, err)
	assert.Equal(t, "fas fa-cheese", *dairy.Icon)
}

func TestSeedIsIdempotent(t *testing.T) {
	seeder, admins, categories := newSeeder(t)
	ctx := context.Background()

	// The admin changes the password after the first seed
	_, err := seeder.Seed(ctx)
	require.NoError(t, err)
	digest, err := auth.HashPassword("changed")
	require.NoError(t, err)
	require.NoError(t, admins.UpdatePassword(ctx, "admin", digest))

	res, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, bootstrap.Result{}, res)

	admin, err := admins.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword("changed", admin.Password), "existing admin is untouched")

	all, err := categories.GetAllCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestSeedSkipsNameClash(t *testing.T) {
	seeder, _, categories := newSeeder(t)
	ctx := context.Background()
	require.NoError(t, categories.CreateCategory(ctx, &models.Category{Name: "Snacks", Slug: "sweets"}))

	res, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.CategoriesCreated)
}

func TestHandleInitData(t *testing.T) {
	seeder, _, _ := newSeeder(t)
	handler := bootstrap.NewHandler(seeder)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.HandleInitData(rec, httptest.NewRequest(http.MethodPost, "/api/init-data", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Data initialized successfully"}`, rec.Body.String())
	}
}
