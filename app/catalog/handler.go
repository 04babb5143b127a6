package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/app/log"
	"github.com/mytheresa/storefront/app/upload"
	"github.com/mytheresa/storefront/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)
	GetStats(ctx context.Context) (models.ProductStats, error)
}

// CategoryLookup is used to reject products that point at unknown categories.
type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (*models.Category, error)
}

type ImageStore interface {
	SaveImage(src io.Reader) (string, error)
	Remove(url string) error
	MaxBytes() int64
}

type CatalogHandler struct {
	repo       ProductProvider
	categories CategoryLookup
	images     ImageStore
}

func NewCatalogHandler(r ProductProvider, c CategoryLookup, images ImageStore) *CatalogHandler {
	return &CatalogHandler{
		repo:       r,
		categories: c,
		images:     images,
	}
}

// HandleGet handles GET /api/products
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Parse pagination query params
	offset := 0
	limit := defaultLimit

	if oStr := q.Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := q.Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			limit = min(max(l, 1), maxLimit)
		}
	}

	filters := models.ProductFilters{
		CategoryID: q.Get("categoryId"),
		Search:     q.Get("search"),
	}

	products, err := h.repo.GetFilteredProducts(r.Context(), offset, limit, filters)
	if err != nil {
		api.WriteInternal(w, "Failed to fetch products", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	api.WriteJSON(w, http.StatusOK, products)
}

// HandleGetProduct handles GET /api/products/{id}
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.WriteError(w, http.StatusNotFound, "Product not found")
			return
		}
		api.WriteInternal(w, "Failed to retrieve product", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, product)
}

// HandleStats handles GET /api/products/stats
func (h *CatalogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats(r.Context())
	if err != nil {
		api.WriteInternal(w, "Failed to fetch product stats", err)
		return
	}
	api.WriteJSON(w, http.StatusOK, stats)
}

// HandleCreate handles POST /api/products
func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}
	defer in.close()

	errs := in.validate(true)
	if errs != nil {
		api.WriteValidation(w, errs)
		return
	}
	if !h.checkCategory(w, r, *in.CategoryID) {
		return
	}

	product := &models.Product{
		Name:        *in.Name,
		SKU:         in.SKU,
		Description: in.Description,
		Price:       in.Price.Round(0),
		Unit:        models.DefaultUnit,
		CategoryID:  *in.CategoryID,
		ImageURL:    in.ImageURL,
		IsActive:    true,
	}
	if in.Unit != nil && *in.Unit != "" {
		product.Unit = *in.Unit
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	uploaded, ok := h.saveImage(w, in)
	if !ok {
		return
	}
	if uploaded != "" {
		product.ImageURL = &uploaded
	}

	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		h.discard(uploaded)
		h.writeStoreError(w, err, "Failed to create product")
		return
	}

	api.WriteJSON(w, http.StatusCreated, product)
}

// HandleUpdate handles PUT /api/products/{id}
func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	in, ok := h.readInput(w, r)
	if !ok {
		return
	}
	defer in.close()

	if errs := in.validate(false); errs != nil {
		api.WriteValidation(w, errs)
		return
	}
	if in.CategoryID != nil && !h.checkCategory(w, r, *in.CategoryID) {
		return
	}

	patch := in.patch()
	if patch.Empty() && in.file == nil {
		// Nothing to change
		h.HandleGetProduct(w, r)
		return
	}

	uploaded, ok := h.saveImage(w, in)
	if !ok {
		return
	}
	if uploaded != "" {
		patch.ImageURL = &uploaded
	}

	product, err := h.repo.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.discard(uploaded)
		h.writeStoreError(w, err, "Failed to update product")
		return
	}

	api.WriteJSON(w, http.StatusOK, product)
}

// HandleDelete handles DELETE /api/products/{id}
func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	n, err := h.repo.DeleteProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		api.WriteInternal(w, "Failed to delete product", err)
		return
	}
	if n == 0 {
		api.WriteError(w, http.StatusNotFound, "Product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkCategory writes a 400 field error when id does not name a category.
func (h *CatalogHandler) checkCategory(w http.ResponseWriter, r *http.Request, id string) bool {
	_, err := h.categories.GetByID(r.Context(), id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, models.ErrCategoryNotFound):
		api.WriteValidation(w, api.ValidationErrors{}.Add("categoryId", "category does not exist"))
	default:
		api.WriteInternal(w, "Failed to verify category", err)
	}
	return false
}

func (h *CatalogHandler) saveImage(w http.ResponseWriter, in *productInput) (string, bool) {
	if in.file == nil {
		return "", true
	}
	url, err := h.images.SaveImage(in.file)
	if err != nil {
		if errors.Is(err, upload.ErrNotImage) || errors.Is(err, upload.ErrTooLarge) {
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return "", false
		}
		api.WriteInternal(w, "Failed to store image", err)
		return "", false
	}
	return url, true
}

func (h *CatalogHandler) discard(url string) {
	if url == "" {
		return
	}
	if err := h.images.Remove(url); err != nil {
		log.Warn("failed to remove orphaned upload", "url", url, "err", err)
	}
}

func (h *CatalogHandler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		api.WriteError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, models.ErrDuplicate):
		api.WriteError(w, http.StatusConflict, "A product with this name or SKU already exists")
	case errors.Is(err, models.ErrCategoryNotFound):
		api.WriteValidation(w, api.ValidationErrors{}.Add("categoryId", "category does not exist"))
	default:
		api.WriteInternal(w, msg, err)
	}
}
