// Package checkout drives one order placement per user through
// Idle -> Validating -> Submitting -> Succeeded | Failed and back to Idle.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_grocery/internal/cart"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/fjod/go_grocery/internal/location"
	"github.com/fjod/go_grocery/internal/notify"
	"github.com/fjod/go_grocery/internal/ordertype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const SuccessMessage = "Order placed successfully!"

type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt *domain.CheckoutAttempt) error
}

// Navigator moves the user to the order confirmation once an order is placed.
type Navigator interface {
	Navigate(userID string, order *domain.PlacedOrder)
}

type NavigatorFunc func(userID string, order *domain.PlacedOrder)

func (f NavigatorFunc) Navigate(userID string, order *domain.PlacedOrder) {
	f(userID, order)
}

type PlaceOrderRequest struct {
	User *domain.User
	// OrderType may be empty, in which case the vendor default is used.
	OrderType domain.OrderType
	Address   location.AddressInput
	Note      string
}

type Result struct {
	AttemptID uuid.UUID
	Order     *domain.PlacedOrder
	Draft     *domain.OrderDraft
	Total     decimal.Decimal
	Message   string
}

// State is the per-user view of the state machine.
type State struct {
	Current   domain.CheckoutStatus `json:"state"`
	Last      domain.CheckoutStatus `json:"last_outcome,omitempty"`
	LastError string                `json:"last_error,omitempty"`
	OrderRef  string                `json:"order_ref,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type Orchestrator struct {
	carts    CartStore
	vendors  *VendorHandler
	orders   *OrderHandler
	notifier notify.Emitter

	attempts           AttemptRecorder
	navigator          Navigator
	navigationDelay    time.Duration
	requireCoordinates bool
	log                *slog.Logger
	now                func() time.Time
	newID              func() uuid.UUID

	mu     sync.Mutex
	states map[string]*State
}

type Option func(*Orchestrator)

func WithAttemptRecorder(r AttemptRecorder) Option {
	return func(o *Orchestrator) { o.attempts = r }
}

func WithNavigator(n Navigator, delay time.Duration) Option {
	return func(o *Orchestrator) {
		o.navigator = n
		o.navigationDelay = delay
	}
}

// WithRequireCoordinates rejects manual delivery addresses that have no
// location fix instead of submitting them with {0,0}.
func WithRequireCoordinates(require bool) Option {
	return func(o *Orchestrator) { o.requireCoordinates = require }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func NewOrchestrator(carts CartStore, vendors *VendorHandler, orders *OrderHandler, notifier notify.Emitter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		carts:    carts,
		vendors:  vendors,
		orders:   orders,
		notifier: notifier,
		log:      slog.Default(),
		now:      time.Now,
		newID:    uuid.New,
		states:   make(map[string]*State),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Result, error) {
	if req.User == nil || strings.TrimSpace(req.User.ID) == "" {
		return nil, o.reject(ctx, "", newError(ErrNotAuthenticated, "", nil))
	}
	userID := req.User.ID

	if !o.begin(userID) {
		return nil, o.reject(ctx, userID, newError(ErrAlreadySubmitting, "", nil))
	}

	draft, verr := o.validate(ctx, req)
	if verr != nil {
		o.finish(userID, domain.CheckoutStatusFailed, verr, "")
		return nil, o.reject(ctx, userID, verr)
	}

	o.advance(userID, domain.CheckoutStatusSubmitting)
	attempt := &domain.CheckoutAttempt{
		ID:          o.newID(),
		UserID:      userID,
		VendorID:    draft.VendorID,
		OrderType:   draft.OrderType,
		TotalAmount: draft.Total(),
		ItemCount:   draft.ItemCount(),
		CreatedAt:   o.now(),
	}
	o.log.InfoContext(ctx, "submitting order",
		"user_id", userID,
		"attempt_id", attempt.ID.String(),
		"vendor_id", draft.VendorID,
		"order_type", string(draft.OrderType),
		"total", attempt.TotalAmount.String())

	order, serr := o.submit(ctx, req.User.Token, draft)
	if serr != nil {
		attempt.Status = domain.CheckoutStatusFailed
		attempt.ErrorKind = KindName(serr)
		o.record(ctx, attempt)
		o.finish(userID, domain.CheckoutStatusFailed, serr, "")
		return nil, o.reject(ctx, userID, serr)
	}

	// the order exists now; a failed clear must not turn this into a failure
	if err := o.carts.Clear(context.WithoutCancel(ctx), userID); err != nil {
		o.log.ErrorContext(ctx, "failed to clear cart after order", "user_id", userID, "error", err)
	}

	attempt.Status = domain.CheckoutStatusSucceeded
	if order != nil {
		attempt.OrderRef = order.ID
	}
	o.record(ctx, attempt)
	o.finish(userID, domain.CheckoutStatusSucceeded, nil, attempt.OrderRef)

	o.notifier.Notify(ctx, domain.Notification{
		UserID:    userID,
		Message:   SuccessMessage,
		Severity:  domain.SeveritySuccess,
		CreatedAt: o.now(),
	})
	o.scheduleNavigation(userID, order)

	return &Result{
		AttemptID: attempt.ID,
		Order:     order,
		Draft:     draft,
		Total:     attempt.TotalAmount,
		Message:   SuccessMessage,
	}, nil
}

// Status returns the user's state; users who never checked out are Idle.
func (o *Orchestrator) Status(userID string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.states[userID]
	if !ok {
		return State{Current: domain.CheckoutStatusIdle}
	}
	return *st
}

func (o *Orchestrator) validate(ctx context.Context, req PlaceOrderRequest) (*domain.OrderDraft, *Error) {
	userID := req.User.ID
	c, err := o.carts.Get(ctx, userID)
	if err != nil {
		return nil, newError(ErrCartUnavailable, "", err)
	}
	if c.IsEmpty() {
		return nil, newError(ErrEmptyCart, "", nil)
	}
	if mixedVendors(c) {
		return nil, newError(cart.ErrMixedVendorCart, "", nil)
	}

	orderType := req.OrderType
	var vendor *domain.Vendor
	looked := false
	if orderType == "" {
		vendor = o.lookupVendor(ctx, c.VendorID())
		looked = true
		orderType = o.defaultOrderType(ctx, vendor)
	}
	if orderType != domain.OrderTypeDelivery && orderType != domain.OrderTypeTakeaway {
		return nil, newError(ErrOrderTypeUnavailable, fmt.Sprintf("Unknown order type %q", orderType), nil)
	}

	var address *domain.DeliveryAddress
	if orderType == domain.OrderTypeDelivery {
		if !location.HasDeliverableAddress(req.Address) {
			return nil, newError(ErrIncompleteAddress, "", nil)
		}
		resolved := location.ResolveEffectiveAddress(req.Address)
		if !resolved.HasCoordinates {
			if o.requireCoordinates {
				return nil, newError(ErrIncompleteAddress, "Share your location so the courier can find the address", nil)
			}
			o.log.WarnContext(ctx, "manual delivery address has no coordinates", "user_id", userID)
		}
		address = &resolved.Address
	}

	if !looked {
		vendor = o.lookupVendor(ctx, c.VendorID())
	}
	if !ordertype.IsAvailable(vendor, orderType) {
		return nil, newError(ErrOrderTypeUnavailable, fmt.Sprintf("This store does not offer %s", orderType), nil)
	}

	return buildDraft(c, orderType, address, domain.ImmediateSchedule(req.Note)), nil
}

// lookupVendor treats a failed lookup like missing vendor data: every order
// type stays available.
func (o *Orchestrator) lookupVendor(ctx context.Context, vendorID string) *domain.Vendor {
	vendor, err := o.vendors.lookup(ctx, vendorID)
	if err != nil {
		o.log.WarnContext(ctx, "vendor lookup failed, assuming all order types", "vendor_id", vendorID, "error", err)
		return nil
	}
	return vendor
}

func (o *Orchestrator) defaultOrderType(ctx context.Context, vendor *domain.Vendor) domain.OrderType {
	res := ordertype.Resolve(vendor, "")
	if res.Degenerate {
		o.log.WarnContext(ctx, "vendor offers no order type", "vendor_id", vendor.ID)
	}
	if res.OrderType == "" {
		return domain.OrderTypeDelivery
	}
	return res.OrderType
}

func (o *Orchestrator) submit(ctx context.Context, token string, draft *domain.OrderDraft) (*domain.PlacedOrder, *Error) {
	result, err := o.orders.submit(ctx, token, draft)
	switch {
	case err != nil && isTimeout(err):
		return nil, newError(ErrSubmissionTimeout, "", err)
	case err != nil:
		return nil, newError(ErrNetwork, "", err)
	case result == nil:
		return nil, newError(ErrSubmissionRejected, "", nil)
	case !result.Success:
		return nil, newError(ErrSubmissionRejected, strings.TrimSpace(result.Message), nil)
	}
	return result.Order, nil
}

func (o *Orchestrator) reject(ctx context.Context, userID string, e *Error) *Error {
	o.log.InfoContext(ctx, "checkout failed", "user_id", userID, "kind", KindName(e), "error", e.Error())
	o.notifier.Notify(ctx, domain.Notification{
		UserID:    userID,
		Message:   e.Message,
		Severity:  domain.SeverityError,
		CreatedAt: o.now(),
	})
	return e
}

func (o *Orchestrator) record(ctx context.Context, attempt *domain.CheckoutAttempt) {
	if o.attempts == nil {
		return
	}
	if err := o.attempts.RecordAttempt(context.WithoutCancel(ctx), attempt); err != nil {
		o.log.WarnContext(ctx, "failed to record checkout attempt", "attempt_id", attempt.ID.String(), "error", err)
	}
}

func (o *Orchestrator) scheduleNavigation(userID string, order *domain.PlacedOrder) {
	if o.navigator == nil {
		return
	}
	time.AfterFunc(o.navigationDelay, func() {
		o.navigator.Navigate(userID, order)
	})
}

// begin claims the user's state machine; false means an attempt is running.
func (o *Orchestrator) begin(userID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	st, ok := o.states[userID]
	if !ok {
		st = &State{Current: domain.CheckoutStatusIdle}
		o.states[userID] = st
	}
	if st.Current.InFlight() {
		return false
	}
	o.transitionLocked(st, domain.CheckoutStatusValidating)
	return true
}

func (o *Orchestrator) advance(userID string, to domain.CheckoutStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitionLocked(o.states[userID], to)
}

// finish records the terminal outcome and returns the user to Idle.
func (o *Orchestrator) finish(userID string, outcome domain.CheckoutStatus, cause *Error, orderRef string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.states[userID]
	o.transitionLocked(st, outcome)
	st.Last = outcome
	st.LastError = ""
	if cause != nil {
		st.LastError = KindName(cause)
	}
	st.OrderRef = orderRef
	o.transitionLocked(st, domain.CheckoutStatusIdle)
}

func (o *Orchestrator) transitionLocked(st *State, to domain.CheckoutStatus) {
	if !domain.CanTransitionTo(st.Current, to) {
		o.log.Error("illegal checkout transition", "error", fmt.Errorf("%w: %s -> %s", IllegalTransitionError, st.Current, to))
		return
	}
	st.Current = to
	st.UpdatedAt = o.now()
}
