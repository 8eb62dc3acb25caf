package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type Favorites interface {
	List(ctx context.Context, token string) ([]string, error)
	Add(ctx context.Context, token, productID string) error
	Remove(ctx context.Context, token, productID string) error
}

type FavoritesHandler struct {
	favorites Favorites
	timeout   time.Duration
}

func NewFavoritesHandler(favorites Favorites, timeout time.Duration) *FavoritesHandler {
	return &FavoritesHandler{
		favorites: favorites,
		timeout:   timeout,
	}
}

type FavoritesResponseDTO struct {
	ProductIDs []string `json:"product_ids"`
}

// GET /api/v1/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ids, err := h.favorites.List(ctx, user.Token)
	if err != nil {
		respondError(w, http.StatusBadGateway, "favorites_unavailable", "could not load favorites")
		return
	}

	respondJSON(w, http.StatusOK, FavoritesResponseDTO{ProductIDs: ids})
}

// POST /api/v1/favorites/{product_id}
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.favorites.Add)
}

// DELETE /api/v1/favorites/{product_id}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, h.favorites.Remove)
}

func (h *FavoritesHandler) change(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, token, productID string) error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if strings.TrimSpace(productID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if err := op(ctx, user.Token, productID); err != nil {
		respondError(w, http.StatusBadGateway, "favorites_unavailable", "could not update favorites")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
