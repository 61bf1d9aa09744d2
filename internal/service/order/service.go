package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type cartSource interface {
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type repo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

// Service turns carts into orders. Line items freeze the product name
// and both unit prices at checkout time, so later catalog edits do not
// rewrite order history.
type Service struct {
	repo repo
	cart cartSource
}

func New(repo repo, cart cartSource) *Service {
	return &Service{repo: repo, cart: cart}
}

func (s *Service) Create(ctx context.Context, userID int64, deliveryAddress, phone string) (*domain.Order, error) {
	if deliveryAddress == "" {
		return nil, errors.New("delivery address is required")
	}

	cart, err := s.cart.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := domain.Order{
		UserID:          userID,
		Status:          domain.OrderSubmitted,
		DeliveryAddress: deliveryAddress,
		Phone:           phone,
		TotalPrice:      cart.TotalPrice,
	}
	for _, item := range cart.Items {
		if item.Product == nil {
			return nil, fmt.Errorf("cart item %d has no product", item.ID)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      item.ProductID,
			ProductName:    item.Product.Name,
			PriceShmeckles: item.Product.PriceShmeckles,
			PriceFlurbos:   item.Product.PriceFlurbos,
			Quantity:       item.Quantity,
		})
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := s.cart.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return created, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// SetStatus validates the transition against the order's current status
// before persisting it. Status changes are an operator action, not an
// owner action, so the lookup is not user-scoped; callers enforce the
// privilege check.
func (s *Service) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	current.Status = status
	return current, nil
}
