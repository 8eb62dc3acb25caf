package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderTypes(t *testing.T, handler *VendorHandler, vendorID, previous string) (*httptest.ResponseRecorder, OrderTypesResponse) {
	t.Helper()
	target := "/"
	if previous != "" {
		target += "?previous=" + previous
	}
	recorder := httptest.NewRecorder()
	handler.OrderTypes(recorder, withURLParam(httptest.NewRequest("GET", target, nil), "vendor_id", vendorID))

	var response OrderTypesResponse
	if recorder.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	}
	return recorder, response
}

func TestOrderTypes_FallsBackToTakeaway(t *testing.T) {
	handler := NewVendorHandler(newStubCatalog(), 5*time.Second)

	recorder, response := orderTypes(t, handler, "v2", "delivery")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, domain.OrderTypeTakeaway, response.OrderType)
	assert.Equal(t, []domain.OrderType{domain.OrderTypeTakeaway}, response.Allowed)
	assert.True(t, response.VendorLoaded)
}

func TestOrderTypes_KeepsAllowedPrevious(t *testing.T) {
	handler := NewVendorHandler(newStubCatalog(), 5*time.Second)

	_, response := orderTypes(t, handler, "v1", "takeaway")

	assert.Equal(t, domain.OrderTypeTakeaway, response.OrderType)
	assert.Len(t, response.Allowed, 2)
}

func TestOrderTypes_UnknownVendor(t *testing.T) {
	handler := NewVendorHandler(newStubCatalog(), 5*time.Second)

	recorder, _ := orderTypes(t, handler, "v9", "")

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestOrderTypes_CatalogDownIsOptimistic(t *testing.T) {
	catalog := newStubCatalog()
	catalog.err = errors.New("timeout")
	handler := NewVendorHandler(catalog, 5*time.Second)

	recorder, response := orderTypes(t, handler, "v2", "delivery")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, domain.OrderTypeDelivery, response.OrderType)
	assert.False(t, response.VendorLoaded)
	assert.Len(t, response.Allowed, 2)
}

func TestOrderTypes_InvalidPrevious(t *testing.T) {
	handler := NewVendorHandler(newStubCatalog(), 5*time.Second)

	recorder, _ := orderTypes(t, handler, "v1", "drone")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProducts_ListsVendorProducts(t *testing.T) {
	handler := NewVendorHandler(newStubCatalog(), 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.Products(recorder, withURLParam(httptest.NewRequest("GET", "/", nil), "vendor_id", "v1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var response ProductsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Len(t, response.Products, 2)
	for _, p := range response.Products {
		assert.Equal(t, "v1", p.VendorID)
	}
}
