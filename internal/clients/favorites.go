package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const favoritesPath = "/api/favorites"

type FavoritesClient struct {
	*Client
}

func NewFavoritesClient(c *Client) *FavoritesClient {
	return &FavoritesClient{Client: c}
}

func (c *FavoritesClient) List(ctx context.Context, token string) ([]string, error) {
	var resp struct {
		Favorites []string `json:"favorites"`
	}
	if err := c.getJSON(ctx, favoritesPath, token, &resp); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	if resp.Favorites == nil {
		return []string{}, nil
	}
	return resp.Favorites, nil
}

func (c *FavoritesClient) Add(ctx context.Context, token, productID string) error {
	status, raw, err := c.do(ctx, http.MethodPost, favoritesPath+"/"+url.PathEscape(productID), token, nil)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if !successful(status) {
		return fmt.Errorf("failed to add favorite: %w", &StatusError{Code: status, Body: string(raw)})
	}
	return nil
}

// Remove treats a favorite that is already gone as removed.
func (c *FavoritesClient) Remove(ctx context.Context, token, productID string) error {
	status, raw, err := c.do(ctx, http.MethodDelete, favoritesPath+"/"+url.PathEscape(productID), token, nil)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if status == http.StatusNotFound || successful(status) {
		return nil
	}
	return fmt.Errorf("failed to remove favorite: %w", &StatusError{Code: status, Body: string(raw)})
}
