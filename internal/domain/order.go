package domain

import "time"

type OrderStatus string

const (
	OrderSubmitted OrderStatus = "submitted"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderSubmitted, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from s to next.
// Cancellation is allowed from any state before delivery.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if next == OrderCancelled {
		return s != OrderDelivered && s != OrderCancelled
	}
	switch s {
	case OrderSubmitted:
		return next == OrderConfirmed
	case OrderConfirmed:
		return next == OrderShipped
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}

// Order is a snapshot of a cart at checkout time. Items freeze product
// name and unit prices, so later catalog changes never alter history.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"-"`
	Status          OrderStatus `json:"status"`
	DeliveryAddress string      `json:"delivery_address"`
	Phone           string      `json:"phone,omitempty"`
	TotalPrice      float64     `json:"total_price"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID             int64   `json:"id"`
	OrderID        int64   `json:"-"`
	ProductID      int64   `json:"product_id"`
	ProductName    string  `json:"product_name"`
	PriceShmeckles float64 `json:"price_shmeckles"`
	PriceFlurbos   float64 `json:"price_flurbos"`
	Quantity       int     `json:"quantity"`
}
