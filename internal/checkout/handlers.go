package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
)

type VendorLookup interface {
	GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error)
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, token string, draft *domain.OrderDraft) (*domain.OrderResult, error)
}

type VendorHandler struct {
	vendorLookup VendorLookup
	timeout      time.Duration
}

func NewVendorHandler(vendorLookup VendorLookup, timeout time.Duration) *VendorHandler {
	return &VendorHandler{
		vendorLookup: vendorLookup,
		timeout:      timeout,
	}
}

func (h *VendorHandler) lookup(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	if h == nil || h.vendorLookup == nil {
		return nil, nil
	}
	vendorCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.vendorLookup.GetVendor(vendorCtx, vendorID)
}

type OrderHandler struct {
	submitter OrderSubmitter
	timeout   time.Duration
}

func NewOrderHandler(submitter OrderSubmitter, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		submitter: submitter,
		timeout:   timeout,
	}
}

type submission struct {
	result *domain.OrderResult
	err    error
}

// submit waits for the submitter until the timeout fires. The caller's
// cancellation is ignored: an order in flight cannot be abandoned midway.
func (h *OrderHandler) submit(ctx context.Context, token string, draft *domain.OrderDraft) (*domain.OrderResult, error) {
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	done := make(chan submission, 1)
	go func() {
		result, err := h.submitter.SubmitOrder(submitCtx, token, draft)
		done <- submission{result: result, err: err}
	}()

	select {
	case s := <-done:
		if s.err != nil && errors.Is(submitCtx.Err(), context.DeadlineExceeded) && !errors.Is(s.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, s.err)
		}
		return s.result, s.err
	case <-submitCtx.Done():
		return nil, submitCtx.Err()
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
