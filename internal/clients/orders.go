package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/shopspring/decimal"
)

const ordersPath = "/api/orders"

type OrderClient struct {
	*Client
}

func NewOrderClient(c *Client) *OrderClient {
	return &OrderClient{Client: c}
}

type coordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type addressDTO struct {
	Street   string         `json:"street"`
	City     string         `json:"city"`
	State    string         `json:"state"`
	Pincode  string         `json:"pincode"`
	Location coordinatesDTO `json:"location"`
}

type orderItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type orderRequest struct {
	VendorID        string                 `json:"vendorId"`
	Items           []orderItemDTO         `json:"items"`
	OrderType       domain.OrderType       `json:"orderType"`
	DeliveryAddress *addressDTO            `json:"deliveryAddress,omitempty"`
	ScheduleDetails domain.ScheduleDetails `json:"scheduleDetails"`
}

type placedOrderDTO struct {
	ID          string    `json:"id"`
	LegacyID    string    `json:"_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type orderResponse struct {
	Success bool            `json:"success"`
	Order   *placedOrderDTO `json:"order"`
	Message string          `json:"message"`
}

func toOrderRequest(d *domain.OrderDraft) orderRequest {
	req := orderRequest{
		VendorID:        d.VendorID,
		Items:           make([]orderItemDTO, 0, len(d.Items)),
		OrderType:       d.OrderType,
		ScheduleDetails: d.ScheduleDetails,
	}
	for _, item := range d.Items {
		req.Items = append(req.Items, orderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.InexactFloat64(),
			Quantity:  item.Quantity,
		})
	}
	if a := d.DeliveryAddress; a != nil {
		req.DeliveryAddress = &addressDTO{
			Street:   a.Street,
			City:     a.City,
			State:    a.State,
			Pincode:  a.Pincode,
			Location: coordinatesDTO{Lat: a.Location.Lat, Lng: a.Location.Lng},
		}
	}
	return req
}

// SubmitOrder posts the draft. Any HTTP answer becomes an OrderResult, with
// Success forced to false for non-2xx; only transport failures are errors.
func (c *OrderClient) SubmitOrder(ctx context.Context, token string, draft *domain.OrderDraft) (*domain.OrderResult, error) {
	status, raw, err := c.do(ctx, http.MethodPost, ordersPath, token, toOrderRequest(draft))
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if len(raw) > 0 {
		// a non-JSON error page still counts as a rejection
		_ = json.Unmarshal(raw, &resp)
	}

	result := &domain.OrderResult{
		Success: resp.Success && successful(status),
		Message: resp.Message,
	}
	if o := resp.Order; o != nil {
		id := o.ID
		if id == "" {
			id = o.LegacyID
		}
		result.Order = &domain.PlacedOrder{
			ID:          id,
			Status:      o.Status,
			TotalAmount: decimal.NewFromFloat(o.TotalAmount),
			CreatedAt:   o.CreatedAt,
		}
	}
	return result, nil
}
