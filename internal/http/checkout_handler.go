package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_grocery/internal/cart"
	"github.com/fjod/go_grocery/internal/checkout"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/fjod/go_grocery/internal/location"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultAttemptsLimit = 20
	maxAttemptsLimit     = 100
)

type Checkout interface {
	PlaceOrder(ctx context.Context, req checkout.PlaceOrderRequest) (*checkout.Result, error)
	Status(userID string) checkout.State
}

type AttemptLister interface {
	ListAttempts(ctx context.Context, userID string, limit int) ([]*domain.CheckoutAttempt, error)
}

type CheckoutHandler struct {
	checkout Checkout
	attempts AttemptLister
	timeout  time.Duration
}

func NewCheckoutHandler(c Checkout, attempts AttemptLister, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: c,
		attempts: attempts,
		timeout:  timeout,
	}
}

type PlaceOrderRequestDTO struct {
	OrderType string                `json:"order_type"`
	Address   location.AddressInput `json:"address"`
	Note      string                `json:"note"`
}

type CheckoutResponseDTO struct {
	AttemptID string              `json:"attempt_id"`
	Status    string              `json:"status"`
	Order     *domain.PlacedOrder `json:"order,omitempty"`
	Total     decimal.Decimal     `json:"total"`
	ItemCount int                 `json:"item_count"`
	Message   string              `json:"message"`
}

type AttemptDTO struct {
	ID          uuid.UUID       `json:"id"`
	VendorID    string          `json:"vendor_id"`
	OrderType   string          `json:"order_type"`
	Status      string          `json:"status"`
	ErrorKind   string          `json:"error_kind,omitempty"`
	OrderRef    string          `json:"order_ref,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	req := PlaceOrderRequestDTO{
		Address: location.AddressInput{SelectedSavedAddressIndex: location.NoSavedAddress},
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	var orderType domain.OrderType
	if req.OrderType != "" {
		parsed, err := domain.ParseOrderType(req.OrderType)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_order_type", err.Error())
			return
		}
		orderType = parsed
	}

	res, err := h.checkout.PlaceOrder(ctx, checkout.PlaceOrderRequest{
		User:      user,
		OrderType: orderType,
		Address:   req.Address,
		Note:      req.Note,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		AttemptID: res.AttemptID.String(),
		Status:    domain.CheckoutStatusSucceeded.String(),
		Order:     res.Order,
		Total:     res.Total,
		ItemCount: res.Draft.ItemCount(),
		Message:   res.Message,
	})
}

// GET /api/v1/checkout/status
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	respondJSON(w, http.StatusOK, h.checkout.Status(user.ID))
}

// GET /api/v1/checkout/attempts?limit=20
func (h *CheckoutHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := getUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	limit := defaultAttemptsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxAttemptsLimit {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	dtos := make([]AttemptDTO, 0)
	if h.attempts != nil {
		attempts, err := h.attempts.ListAttempts(ctx, user.ID, limit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal_error", "could not load checkout attempts")
			return
		}
		for _, a := range attempts {
			dtos = append(dtos, AttemptDTO{
				ID:          a.ID,
				VendorID:    a.VendorID,
				OrderType:   string(a.OrderType),
				Status:      a.Status.String(),
				ErrorKind:   a.ErrorKind,
				OrderRef:    a.OrderRef,
				TotalAmount: a.TotalAmount,
				ItemCount:   a.ItemCount,
				CreatedAt:   a.CreatedAt,
			})
		}
	}

	respondJSON(w, http.StatusOK, dtos)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var cerr *checkout.Error
	if !errors.As(err, &cerr) {
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	var httpStatus int
	switch {
	case errors.Is(err, checkout.ErrNotAuthenticated):
		httpStatus = http.StatusUnauthorized
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrIncompleteAddress):
		httpStatus = http.StatusBadRequest
	case errors.Is(err, checkout.ErrAlreadySubmitting), errors.Is(err, cart.ErrMixedVendorCart):
		httpStatus = http.StatusConflict
	case errors.Is(err, checkout.ErrOrderTypeUnavailable), errors.Is(err, checkout.ErrSubmissionRejected):
		httpStatus = http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrNetwork):
		httpStatus = http.StatusBadGateway
	case errors.Is(err, checkout.ErrSubmissionTimeout):
		httpStatus = http.StatusGatewayTimeout
	default:
		httpStatus = http.StatusInternalServerError
	}

	respondErrorDetails(w, httpStatus, checkout.KindName(err), cerr.Message, cerr.Kind.Error())
}
