package http

import (
	"context"
	"sync"

	"github.com/fjod/go_grocery/internal/catalog"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/shopspring/decimal"
)

// stubCatalog implements catalog.Catalog for testing
type stubCatalog struct {
	vendors  map[string]*domain.Vendor
	products map[string]*domain.Product
	err      error
}

func newStubCatalog() *stubCatalog {
	offer := decimal.NewFromInt(35)
	return &stubCatalog{
		vendors: map[string]*domain.Vendor{
			"v1": {ID: "v1", Name: "Green Basket", ServiceTypes: domain.ServiceTypes{Delivery: true, Takeaway: true}},
			"v2": {ID: "v2", Name: "Corner Bakery", ServiceTypes: domain.ServiceTypes{Takeaway: true}},
		},
		products: map[string]*domain.Product{
			"p1": {ID: "p1", VendorID: "v1", Name: "Organic Milk", Price: decimal.NewFromInt(40), OfferPrice: &offer},
			"p2": {ID: "p2", VendorID: "v1", Name: "Eggs", Price: decimal.NewFromInt(90)},
			"p4": {ID: "p4", VendorID: "v2", Name: "Sourdough", Price: decimal.NewFromInt(120)},
		},
	}
}

func (s *stubCatalog) GetVendor(_ context.Context, vendorID string) (*domain.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.vendors[vendorID]
	if !ok {
		return nil, catalog.ErrVendorNotFound
	}
	return v, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (s *stubCatalog) ListProducts(_ context.Context, vendorID string) ([]*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.Product
	for _, id := range []string{"p1", "p2", "p4"} {
		if p := s.products[id]; p.VendorID == vendorID {
			out = append(out, p)
		}
	}
	return out, nil
}

// stubFavorites implements Favorites for testing
type stubFavorites struct {
	mu     sync.Mutex
	ids    []string
	tokens []string
	err    error
}

func (s *stubFavorites) List(_ context.Context, token string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return s.ids, s.err
}

func (s *stubFavorites) Add(_ context.Context, token, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, productID)
	return nil
}

func (s *stubFavorites) Remove(_ context.Context, token, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	if s.err != nil {
		return s.err
	}
	for i, id := range s.ids {
		if id == productID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}
