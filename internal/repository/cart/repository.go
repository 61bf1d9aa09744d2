package cart

import (
	"context"

	"storefront/internal/domain"
)

// MergeLine is one entry of a guest-cart batch submitted on login.
type MergeLine struct {
	ProductID int64
	Quantity  int
}

type Repository interface {
	// GetByUser returns the user's cart with items, creating an empty
	// cart on first access.
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	// AddItem adds quantity of a product, incrementing an existing
	// position, and returns the affected item.
	AddItem(ctx context.Context, userID int64, product domain.Product, quantity int) (*domain.CartItem, error)
	// UpdateItemQuantity sets an absolute quantity on one position.
	UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	// Merge folds a guest batch into the cart, summing quantities for
	// overlapping products.
	Merge(ctx context.Context, userID int64, lines []MergeLine) (*domain.Cart, error)
	// Clear removes every position; order creation consumes the cart
	// this way.
	Clear(ctx context.Context, userID int64) error
}
