package catalog

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/models"
)

// Multipart bodies may carry this much besides the image itself.
const formOverhead = 1 << 20

// productInput is a product payload as sent by the admin UI, either as JSON
// or as multipart/form-data with an optional "image" file. A nil field was
// not sent.
type productInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	SKU         *string          `json:"sku" validate:"omitempty,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit" validate:"omitempty,max=50"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,max=500"`
	CategoryID  *string          `json:"categoryId" validate:"omitempty,max=36"`
	IsActive    *bool            `json:"isActive"`

	file     multipart.File
	form     *multipart.Form
	parseErr api.ValidationErrors
}

// readInput decodes the request body. On failure it has already written the response.
func (h *CatalogHandler) readInput(w http.ResponseWriter, r *http.Request) (*productInput, bool) {
	in := &productInput{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(in); err != nil {
			api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
			return nil, false
		}
		return in, true
	}

	limit := h.images.MaxBytes() + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			api.WriteError(w, http.StatusBadRequest, "Request body too large")
			return nil, false
		}
		api.WriteError(w, http.StatusBadRequest, "Invalid form data")
		return nil, false
	}
	in.form = r.MultipartForm

	values := r.MultipartForm.Value
	in.Name = formValue(values, "name")
	in.SKU = formValue(values, "sku")
	in.Description = formValue(values, "description")
	in.Unit = formValue(values, "unit")
	in.ImageURL = formValue(values, "imageUrl")
	in.CategoryID = formValue(values, "categoryId")

	if s := formValue(values, "price"); s != nil && strings.TrimSpace(*s) != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(*s))
		if err != nil {
			in.parseErr = in.parseErr.Add("price", "must be a number")
		} else {
			in.Price = &price
		}
	}
	if s := formValue(values, "stock"); s != nil && strings.TrimSpace(*s) != "" {
		stock, err := strconv.Atoi(strings.TrimSpace(*s))
		if err != nil {
			in.parseErr = in.parseErr.Add("stock", "must be an integer")
		} else {
			in.Stock = &stock
		}
	}
	if s := formValue(values, "isActive"); s != nil && strings.TrimSpace(*s) != "" {
		active, err := strconv.ParseBool(strings.TrimSpace(*s))
		if err != nil {
			in.parseErr = in.parseErr.Add("isActive", "must be true or false")
		} else {
			in.IsActive = &active
		}
	}

	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			in.close()
			api.WriteInternal(w, "Failed to read image", err)
			return nil, false
		}
		in.file = f
	}

	return in, true
}

// validate collects every field problem. Creation additionally requires name, price and categoryId.
func (in *productInput) validate(create bool) api.ValidationErrors {
	errs := append(api.ValidationErrors{}, in.parseErr...)

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) == "" {
		in.Unit = nil
	}

	if create {
		if in.Name == nil || *in.Name == "" {
			errs = errs.Add("name", "is required")
		}
		if in.Price == nil && !in.hasParseError("price") {
			errs = errs.Add("price", "is required")
		}
		if in.CategoryID == nil || *in.CategoryID == "" {
			errs = errs.Add("categoryId", "is required")
		}
	} else {
		if in.Name != nil && *in.Name == "" {
			errs = errs.Add("name", "must not be empty")
		}
		if in.CategoryID != nil && *in.CategoryID == "" {
			errs = errs.Add("categoryId", "must not be empty")
		}
	}

	// The slug is derived from the name
	if in.Name != nil && *in.Name != "" && models.Slugify(*in.Name) == "" {
		errs = errs.Add("name", "must contain a letter or digit")
	}
	if in.Price != nil && in.Price.IsNegative() {
		errs = errs.Add("price", "must be greater than or equal to 0")
	}
	errs = append(errs, api.Validate(in)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (in *productInput) hasParseError(field string) bool {
	for _, fe := range in.parseErr {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (in *productInput) patch() models.ProductPatch {
	p := models.ProductPatch{
		Name:        in.Name,
		SKU:         in.SKU,
		Description: in.Description,
		Unit:        in.Unit,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CategoryID:  in.CategoryID,
		IsActive:    in.IsActive,
	}
	if in.Price != nil {
		rounded := in.Price.Round(0)
		p.Price = &rounded
	}
	return p
}

func (in *productInput) close() {
	if in.file != nil {
		_ = in.file.Close()
	}
	if in.form != nil {
		_ = in.form.RemoveAll()
	}
}

func formValue(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}
