package api

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

type cartItemAdd struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type cartItemUpdate struct {
	Quantity int `json:"quantity"`
}

// MergeItem is the narrow shape a guest cart line is reduced to before it
// is sent to the merge endpoint. Local-only metadata never crosses the
// wire.
type MergeItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type mergeRequest struct {
	Items []MergeItem `json:"items"`
}

// GetCart fetches the server-owned cart for the current identity.
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/cart/", nil, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem asks the server to add or increment a position and returns
// the server's representation of the affected line.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) (*domain.CartItem, error) {
	var item domain.CartItem
	err := c.do(ctx, http.MethodPost, "/cart/items", cartItemAdd{ProductID: productID, Quantity: quantity}, true, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem sets an absolute quantity on a server line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*domain.CartItem, error) {
	var item domain.CartItem
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/cart/items/%d", itemID), cartItemUpdate{Quantity: quantity}, true, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil, true, nil)
}

// MergeCart submits a batch of guest lines in one request. The server is
// the sole authority for conflict resolution against any cart the account
// already had.
func (c *Client) MergeCart(ctx context.Context, items []MergeItem) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/merge", mergeRequest{Items: items}, true, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
