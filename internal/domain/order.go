package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypeTakeaway OrderType = "takeaway"
)

func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(strings.ToLower(strings.TrimSpace(s))) {
	case OrderTypeDelivery:
		return OrderTypeDelivery, nil
	case OrderTypeTakeaway:
		return OrderTypeTakeaway, nil
	default:
		return "", fmt.Errorf("unknown order type %q", s)
	}
}

type ScheduleType string

const (
	ScheduleImmediate ScheduleType = "immediate"
	ScheduleScheduled ScheduleType = "scheduled"
)

type ScheduleDetails struct {
	IsScheduled         bool         `json:"isScheduled"`
	ScheduleType        ScheduleType `json:"scheduleType"`
	SpecialInstructions string       `json:"specialInstructions,omitempty"`
}

// ImmediateSchedule is what checkout sends when the customer did not pick a slot.
func ImmediateSchedule(note string) ScheduleDetails {
	return ScheduleDetails{
		IsScheduled:         false,
		ScheduleType:        ScheduleImmediate,
		SpecialInstructions: strings.TrimSpace(note),
	}
}

type OrderDraftItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderDraft lives only for the duration of one submission attempt.
type OrderDraft struct {
	VendorID        string           `json:"vendorId"`
	Items           []OrderDraftItem `json:"items"`
	OrderType       OrderType        `json:"orderType"`
	DeliveryAddress *DeliveryAddress `json:"deliveryAddress,omitempty"`
	ScheduleDetails ScheduleDetails  `json:"scheduleDetails"`
}

func (d *OrderDraft) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (d *OrderDraft) ItemCount() int {
	n := 0
	for _, item := range d.Items {
		n += item.Quantity
	}
	return n
}

type PlacedOrder struct {
	ID          string          `json:"id"`
	Status      string          `json:"status,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// OrderResult is what the order submission service answered.
type OrderResult struct {
	Success bool         `json:"success"`
	Order   *PlacedOrder `json:"order,omitempty"`
	Message string       `json:"message,omitempty"`
}

// CheckoutAttempt is the ledger row written once per submitted checkout.
type CheckoutAttempt struct {
	ID          uuid.UUID
	UserID      string
	VendorID    string
	OrderType   OrderType
	Status      CheckoutStatus
	ErrorKind   string
	OrderRef    string
	TotalAmount decimal.Decimal
	ItemCount   int
	CreatedAt   time.Time
}
