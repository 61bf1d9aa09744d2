package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create inserts the order with its frozen line items and returns
	// the stored record.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.Order, error)
	// Get fetches an order regardless of owner; the admin status flow
	// uses it.
	Get(ctx context.Context, id int64) (*domain.Order, error)
	// SetStatus applies a server-side status transition.
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}
