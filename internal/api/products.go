package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

// ListProducts fetches the whole catalog. No authentication required.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/", nil, false, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product; a 404 maps to domain.ErrNotFound so the
// caller can route to its not-found view instead of showing a raw error.
func (c *Client) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, false, &product)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}
