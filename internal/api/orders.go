package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/domain"
)

type orderCreate struct {
	DeliveryAddress string `json:"delivery_address"`
	Phone           string `json:"phone,omitempty"`
}

// CreateOrder places an order from the current server cart. The backend
// snapshots and clears the cart itself.
func (c *Client) CreateOrder(ctx context.Context, deliveryAddress, phone string) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPost, "/orders/", orderCreate{DeliveryAddress: deliveryAddress, Phone: phone}, true, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, true, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, true, &order)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}
