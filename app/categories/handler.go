package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/models"
)

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
}

type CreateCategoryRequest struct {
	Name string  `json:"name" validate:"required,max=100"`
	Slug string  `json:"slug" validate:"omitempty,max=100"`
	Icon *string `json:"icon" validate:"omitempty,max=50"`
}

type CategoryHandler struct {
	repo CategoryProvider
}

func NewCategoryHandler(r CategoryProvider) *CategoryHandler {
	return &CategoryHandler{repo: r}
}

// HandleGetAll handles GET /api/categories
func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.WriteInternal(w, "failed to fetch categories", err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	api.WriteJSON(w, http.StatusOK, categories)
}

// HandleCreate handles POST /api/categories
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if errs := api.Validate(input); errs != nil {
		api.WriteValidation(w, errs)
		return
	}

	// An explicit slug is normalised the same way a derived one is
	slug := models.Slugify(input.Slug)
	if slug == "" {
		slug = models.Slugify(input.Name)
	}
	if slug == "" {
		api.WriteValidation(w, api.ValidationErrors{}.Add("slug", "cannot be derived from name"))
		return
	}

	category := &models.Category{
		Name: input.Name,
		Slug: slug,
		Icon: input.Icon,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			api.WriteError(w, http.StatusConflict, "Category already exists")
			return
		}
		api.WriteInternal(w, "Failed to create category", err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, category)
}
