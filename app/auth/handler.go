package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mytheresa/storefront/app/api"
	"github.com/mytheresa/storefront/app/session"
	"github.com/mytheresa/storefront/models"
)

const invalidCredentials = "Invalid username or password"

// dummyDigest is verified against when the username is unknown so that both
// failure paths cost one scrypt derivation.
var dummyDigest, _ = HashPassword("storefront-dummy-password")

type AdminResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	FullName *string `json:"fullName"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type AdminProvider interface {
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

type AuthHandler struct {
	repo     AdminProvider
	sessions *session.Manager
}

func NewAuthHandler(r AdminProvider, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		repo:     r,
		sessions: sessions,
	}
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := api.Validate(req); errs != nil {
		api.WriteValidation(w, errs)
		return
	}

	admin, err := h.repo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, models.ErrAdminNotFound) {
			VerifyPassword(req.Password, dummyDigest)
			api.WriteError(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		api.WriteInternal(w, "Login failed", err)
		return
	}

	if !VerifyPassword(req.Password, admin.Password) || !admin.IsActive {
		api.WriteError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if _, err := h.sessions.Create(w, r, admin.ID, admin.Username); err != nil {
		api.WriteInternal(w, "Login failed", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, toAdminResponse(admin))
}

// HandleLogout handles POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		api.WriteInternal(w, "Logout failed", err)
		return
	}
	api.WriteMessage(w, http.StatusOK, "Logged out successfully")
}

// HandleUser handles GET /api/auth/user
func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	admin, err := h.repo.GetByID(r.Context(), sess.AdminID)
	if err != nil {
		if errors.Is(err, models.ErrAdminNotFound) {
			api.WriteError(w, http.StatusNotFound, "Admin not found")
			return
		}
		api.WriteInternal(w, "Failed to retrieve admin", err)
		return
	}

	api.WriteJSON(w, http.StatusOK, toAdminResponse(admin))
}

func toAdminResponse(a *models.Admin) AdminResponse {
	return AdminResponse{
		ID:       a.ID,
		Username: a.Username,
		FullName: a.FullName,
	}
}
