package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCart() *Cart {
	offer := price("35.00")
	return &Cart{
		UserID: "user-1",
		Items: []CartLineItem{
			{ProductID: "p1", VendorID: "v1", Name: "Milk", UnitPrice: price("40.00"), OfferPrice: &offer, Quantity: 2},
			{ProductID: "p2", VendorID: "v1", Name: "Bread", UnitPrice: price("25.50"), Quantity: 1},
		},
	}
}

func TestCart_Totals(t *testing.T) {
	c := testCart()

	assert.Equal(t, 3, c.TotalItemCount())
	assert.True(t, c.TotalPrice().Equal(price("95.50")), "got %s", c.TotalPrice())
	assert.True(t, c.Items[0].EffectivePrice().Equal(price("35.00")))
	assert.True(t, c.Items[1].EffectivePrice().Equal(price("25.50")))
	assert.Equal(t, "v1", c.VendorID())
	assert.Equal(t, 1, c.Find("p2"))
	assert.Equal(t, -1, c.Find("missing"))
}

func TestCart_Empty(t *testing.T) {
	c := &Cart{UserID: "user-1"}

	assert.True(t, c.IsEmpty())
	assert.Equal(t, "", c.VendorID())
	assert.Equal(t, 0, c.TotalItemCount())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestCart_CloneIsDeep(t *testing.T) {
	c := testCart()
	clone := c.Clone()
	require.NotNil(t, clone)

	clone.Items[0].Quantity = 9
	*clone.Items[0].OfferPrice = price("1.00")
	clone.Items = append(clone.Items, CartLineItem{ProductID: "p3"})

	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.True(t, c.Items[0].OfferPrice.Equal(price("35.00")))
	assert.Len(t, c.Items, 2)

	var nilCart *Cart
	assert.Nil(t, nilCart.Clone())
}

func TestOrderDraft_TotalUsesListPrice(t *testing.T) {
	d := &OrderDraft{Items: []OrderDraftItem{
		{ProductID: "p1", Price: price("40.00"), Quantity: 2},
		{ProductID: "p2", Price: price("25.50"), Quantity: 1},
	}}

	assert.True(t, d.Total().Equal(price("105.50")), "got %s", d.Total())
	assert.Equal(t, 3, d.ItemCount())
}

func TestParseOrderType(t *testing.T) {
	ot, err := ParseOrderType(" Delivery ")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeDelivery, ot)

	ot, err = ParseOrderType("takeaway")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeTakeaway, ot)

	_, err = ParseOrderType("dine-in")
	assert.Error(t, err)
}

func TestDeliveryAddress_HasAllFields(t *testing.T) {
	full := DeliveryAddress{Street: "1 Main St", City: "Pune", State: "MH", Pincode: "411001"}
	assert.True(t, full.HasAllFields())

	blank := full
	blank.Pincode = "  "
	assert.False(t, blank.HasAllFields())
}

func TestVendor_Supports(t *testing.T) {
	v := &Vendor{ID: "v2", ServiceTypes: ServiceTypes{Takeaway: true}}

	assert.True(t, v.Supports(OrderTypeTakeaway))
	assert.False(t, v.Supports(OrderTypeDelivery))
	assert.False(t, v.Supports(OrderType("drone")))
}

func TestImmediateSchedule(t *testing.T) {
	s := ImmediateSchedule("  ring the bell ")

	assert.False(t, s.IsScheduled)
	assert.Equal(t, ScheduleImmediate, s.ScheduleType)
	assert.Equal(t, "ring the bell", s.SpecialInstructions)
}
