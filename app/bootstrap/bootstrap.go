// Package bootstrap seeds a fresh database with the default admin account
// and the starter categories. Seeding is idempotent.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/app/auth"
	"github.com/mytheresa/storefront/app/log"
	"github.com/mytheresa/storefront/models"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminFullName = "Administrator"
)

type DefaultCategory struct {
	Name string
	Slug string
	Icon string
}

var DefaultCategories = []DefaultCategory{
	{Name: "Beverages", Slug: "beverages", Icon: "fas fa-wine-bottle"},
	{Name: "Snacks", Slug: "snacks", Icon: "fas fa-cookie-bite"},
	{Name: "Vegetables", Slug: "vegetables", Icon: "fas fa-carrot"},
	{Name: "Dairy & Eggs", Slug: "dairy-eggs", Icon: "fas fa-cheese"},
	{Name: "Meat & Fish", Slug: "meat-fish", Icon: "fas fa-drumstick-bite"},
	{Name: "Household", Slug: "household", Icon: "fas fa-spray-can"},
}

type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, admin *models.Admin) error
}

type CategoryStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

// Result reports what a Seed call actually inserted.
type Result struct {
	AdminCreated      bool
	CategoriesCreated int
}

type Seeder struct {
	admins     AdminStore
	categories CategoryStore
}

func NewSeeder(admins AdminStore, categories CategoryStore) *Seeder {
	return &Seeder{admins: admins, categories: categories}
}

// Seed creates whatever defaults are missing and leaves existing rows alone.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	var res Result

	created, err := s.seedAdmin(ctx)
	if err != nil {
		return res, err
	}
	res.AdminCreated = created

	for _, dc := range DefaultCategories {
		created, err := s.seedCategory(ctx, dc)
		if err != nil {
			return res, err
		}
		if created {
			res.CategoriesCreated++
		}
	}
	return res, nil
}

func (s *Seeder) seedAdmin(ctx context.Context) (bool, error) {
	_, err := s.admins.GetByUsername(ctx, DefaultAdminUsername)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrAdminNotFound) {
		return false, fmt.Errorf("look up default admin: %w", err)
	}

	digest, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return false, err
	}
	fullName := DefaultAdminFullName
	err = s.admins.CreateAdmin(ctx, &models.Admin{
		Username: DefaultAdminUsername,
		Password: digest,
		FullName: &fullName,
		IsActive: true,
	})
	if errors.Is(err, models.ErrDuplicate) {
		// Lost a race with a concurrent seed
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}
	log.Warn("created default admin account, change its password", "username", DefaultAdminUsername)
	return true, nil
}

func (s *Seeder) seedCategory(ctx context.Context, dc DefaultCategory) (bool, error) {
	_, err := s.categories.GetBySlug(ctx, dc.Slug)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrCategoryNotFound) {
		return false, fmt.Errorf("look up category %q: %w", dc.Slug, err)
	}

	icon := dc.Icon
	err = s.categories.CreateCategory(ctx, &models.Category{Name: dc.Name, Slug: dc.Slug, Icon: &icon})
	if errors.Is(err, models.ErrDuplicate) {
		// The name is already taken under another slug
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create category %q: %w", dc.Slug, err)
	}
	return true, nil
}

type Handler struct {
	seeder *Seeder
}

func NewHandler(s *Seeder) *Handler {
	return &Handler{seeder: s}
}

// HandleInitData handles POST /api/init-data
func (h *Handler) HandleInitData(w http.ResponseWriter, r *http.Request) {
	res, err := h.seeder.Seed(r.Context())
	if err != nil {
		api.WriteInternal(w, "Failed to initialize data", err)
		return
	}
	log.Info("initialized data", "adminCreated", res.AdminCreated, "categoriesCreated", res.CategoriesCreated)
	api.WriteMessage(w, http.StatusOK, "Data initialized successfully")
}
