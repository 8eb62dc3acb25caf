package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_grocery/internal/catalog"
	"github.com/fjod/go_grocery/internal/clients"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/fjod/go_grocery/internal/ordertype"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type VendorHandler struct {
	catalog catalog.Catalog
	timeout time.Duration
}

func NewVendorHandler(catalog catalog.Catalog, timeout time.Duration) *VendorHandler {
	return &VendorHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductResponse struct {
	ID         string           `json:"id"`
	VendorID   string           `json:"vendor_id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	OfferPrice *decimal.Decimal `json:"offer_price,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type OrderTypesResponse struct {
	VendorID     string             `json:"vendor_id"`
	OrderType    domain.OrderType   `json:"order_type"`
	Allowed      []domain.OrderType `json:"allowed"`
	Degenerate   bool               `json:"degenerate,omitempty"`
	VendorLoaded bool               `json:"vendor_loaded"`
}

// GET /api/v1/vendors/{vendor_id}/products
func (h *VendorHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.catalog.ListProducts(ctx, chi.URLParam(r, "vendor_id"))
	if err != nil {
		handleCatalogError(w, err)
		return
	}
	products := make([]ProductResponse, len(res))
	for i, p := range res {
		products[i] = ProductResponse{
			ID:         p.ID,
			VendorID:   p.VendorID,
			Name:       p.Name,
			Price:      p.Price,
			OfferPrice: p.OfferPrice,
		}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}

// GET /api/v1/vendors/{vendor_id}/order-types?previous=delivery
//
// A vendor that cannot be loaded right now keeps the previous selection and
// allows every order type.
func (h *VendorHandler) OrderTypes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	vendorID := chi.URLParam(r, "vendor_id")

	var previous domain.OrderType
	if raw := r.URL.Query().Get("previous"); raw != "" {
		parsed, err := domain.ParseOrderType(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_order_type", err.Error())
			return
		}
		previous = parsed
	}

	vendor, err := h.catalog.GetVendor(ctx, vendorID)
	switch {
	case errors.Is(err, catalog.ErrVendorNotFound), errors.Is(err, clients.ErrNotFound):
		respondError(w, http.StatusNotFound, "vendor_not_found", err.Error())
		return
	case err != nil:
		slog.WarnContext(ctx, "vendor lookup failed", "vendor_id", vendorID, "error", err)
		vendor = nil
	}

	res := ordertype.Resolve(vendor, previous)
	respondJSON(w, http.StatusOK, OrderTypesResponse{
		VendorID:     vendorID,
		OrderType:    res.OrderType,
		Allowed:      res.Allowed,
		Degenerate:   res.Degenerate,
		VendorLoaded: vendor != nil,
	})
}
