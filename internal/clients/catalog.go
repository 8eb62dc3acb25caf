package clients

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/shopspring/decimal"
)

type CatalogClient struct {
	*Client
}

func NewCatalogClient(c *Client) *CatalogClient {
	return &CatalogClient{Client: c}
}

type vendorDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ServiceTypes struct {
		Delivery bool `json:"delivery"`
		Takeaway bool `json:"takeaway"`
	} `json:"serviceTypes"`
}

type productDTO struct {
	ID         string   `json:"id"`
	VendorID   string   `json:"vendorId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	OfferPrice *float64 `json:"offerPrice"`
}

func (c *CatalogClient) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	var resp struct {
		Vendor *vendorDTO `json:"vendor"`
	}
	if err := c.getJSON(ctx, "/api/vendors/"+url.PathEscape(vendorID), "", &resp); err != nil {
		return nil, fmt.Errorf("failed to get vendor %s: %w", vendorID, err)
	}
	if resp.Vendor == nil {
		return nil, fmt.Errorf("failed to get vendor %s: %w", vendorID, ErrNotFound)
	}
	v := resp.Vendor
	id := v.ID
	if id == "" {
		id = vendorID
	}
	return &domain.Vendor{
		ID:   id,
		Name: v.Name,
		ServiceTypes: domain.ServiceTypes{
			Delivery: v.ServiceTypes.Delivery,
			Takeaway: v.ServiceTypes.Takeaway,
		},
	}, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var resp struct {
		Product *productDTO `json:"product"`
	}
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(productID), "", &resp); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("failed to get product %s: %w", productID, ErrNotFound)
	}
	p := resp.Product
	product := &domain.Product{
		ID:       p.ID,
		VendorID: p.VendorID,
		Name:     p.Name,
		Price:    decimal.NewFromFloat(p.Price),
	}
	if p.OfferPrice != nil {
		offer := decimal.NewFromFloat(*p.OfferPrice)
		product.OfferPrice = &offer
	}
	return product, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context, vendorID string) ([]*domain.Product, error) {
	var resp struct {
		Products []productDTO `json:"products"`
	}
	if err := c.getJSON(ctx, "/api/vendors/"+url.PathEscape(vendorID)+"/products", "", &resp); err != nil {
		return nil, fmt.Errorf("failed to list products for vendor %s: %w", vendorID, err)
	}
	products := make([]*domain.Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		product := &domain.Product{ID: p.ID, VendorID: p.VendorID, Name: p.Name, Price: decimal.NewFromFloat(p.Price)}
		if p.OfferPrice != nil {
			offer := decimal.NewFromFloat(*p.OfferPrice)
			product.OfferPrice = &offer
		}
		products = append(products, product)
	}
	return products, nil
}
