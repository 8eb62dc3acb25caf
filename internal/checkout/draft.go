package checkout

import (
	"github.com/fjod/go_grocery/internal/domain"
)

// buildDraft snapshots the cart at submission time. Items go out at their
// list price; the offer price is a display concern only.
func buildDraft(c *domain.Cart, orderType domain.OrderType, address *domain.DeliveryAddress, schedule domain.ScheduleDetails) *domain.OrderDraft {
	draft := &domain.OrderDraft{
		VendorID:        c.VendorID(),
		Items:           make([]domain.OrderDraftItem, 0, len(c.Items)),
		OrderType:       orderType,
		ScheduleDetails: schedule,
	}
	if orderType == domain.OrderTypeDelivery && address != nil {
		addr := *address
		draft.DeliveryAddress = &addr
	}

	for _, item := range c.Items {
		draft.Items = append(draft.Items, domain.OrderDraftItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return draft
}

func mixedVendors(c *domain.Cart) bool {
	vendorID := c.VendorID()
	for _, item := range c.Items {
		if item.VendorID != vendorID {
			return true
		}
	}
	return false
}
