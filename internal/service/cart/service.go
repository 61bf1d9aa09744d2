package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// ErrUnknownProduct is returned when an add references a product that is
// not in the catalog.
var ErrUnknownProduct = errors.New("product not found")

type repo interface {
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID int64, product domain.Product, quantity int) (*domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Merge(ctx context.Context, userID int64, lines []cartrepo.MergeLine) (*domain.Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Service owns the server-side cart of one authenticated user.
type Service struct {
	repo     repo
	products productRepo
}

func New(repo repo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.repo.GetByUser(ctx, userID)
}

// MergeInput is one line of a guest-cart batch.
type MergeInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

func (s *Service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, errors.New("quantity must be positive")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}
	return s.repo.AddItem(ctx, userID, *product, quantity)
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, errors.New("quantity must be positive")
	}
	return s.repo.UpdateItemQuantity(ctx, userID, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return s.repo.RemoveItem(ctx, userID, itemID)
}

// Merge folds a guest batch into the user's cart. Quantities for
// overlapping products are summed; the resulting cart is returned whole
// so the client can resynchronize from it.
func (s *Service) Merge(ctx context.Context, userID int64, items []MergeInput) (*domain.Cart, error) {
	lines := make([]cartrepo.MergeLine, 0, len(items))
	for _, item := range items {
		if item.ProductID <= 0 || item.Quantity < 1 {
			continue
		}
		lines = append(lines, cartrepo.MergeLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if len(lines) == 0 {
		return s.repo.GetByUser(ctx, userID)
	}
	return s.repo.Merge(ctx, userID, lines)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}
