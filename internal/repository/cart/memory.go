package cart

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
)

type productSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Memory keeps carts in process memory, resolving products through the
// catalog so item responses embed product details the same way the
// Postgres implementation does.
type Memory struct {
	mu       sync.Mutex
	nextCart int64
	nextItem int64
	products productSource
	carts    map[int64]*domain.Cart // by user id
}

func NewMemory(products productSource) *Memory {
	return &Memory{nextCart: 1, nextItem: 1, products: products, carts: map[int64]*domain.Cart{}}
}

func (r *Memory) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(ctx, r.ensureCartLocked(userID))
}

func (r *Memory) AddItem(ctx context.Context, userID int64, product domain.Product, quantity int) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.ensureCartLocked(userID)
	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			cart.Items[i].Quantity += quantity
			out := cart.Items[i]
			p := product
			out.Product = &p
			return &out, nil
		}
	}

	item := domain.CartItem{
		ID:        r.nextItem,
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	r.nextItem++
	cart.Items = append(cart.Items, item)

	out := item
	p := product
	out.Product = &p
	return &out, nil
}

func (r *Memory) UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.ensureCartLocked(userID)
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = quantity
			out := cart.Items[i]
			if p, err := r.products.GetByID(ctx, out.ProductID); err == nil {
				out.Product = p
			}
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Memory) RemoveItem(_ context.Context, userID, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.ensureCartLocked(userID)
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *Memory) Merge(ctx context.Context, userID int64, lines []MergeLine) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.ensureCartLocked(userID)
	for _, line := range lines {
		if _, err := r.products.GetByID(ctx, line.ProductID); err != nil {
			continue // unknown products are skipped, not an error
		}
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == line.ProductID {
				cart.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, domain.CartItem{
				ID:        r.nextItem,
				CartID:    cart.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				CreatedAt: time.Now().UTC(),
			})
			r.nextItem++
		}
	}
	return r.snapshot(ctx, cart)
}

func (r *Memory) Clear(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.ensureCartLocked(userID)
	cart.Items = nil
	return nil
}

func (r *Memory) ensureCartLocked(userID int64) *domain.Cart {
	cart, ok := r.carts[userID]
	if !ok {
		cart = &domain.Cart{ID: r.nextCart, UserID: userID}
		r.nextCart++
		r.carts[userID] = cart
	}
	return cart
}

// snapshot copies the cart, resolves products, and computes the total.
func (r *Memory) snapshot(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	out := &domain.Cart{ID: cart.ID, UserID: cart.UserID, Items: make([]domain.CartItem, 0, len(cart.Items))}
	for _, item := range cart.Items {
		p, err := r.products.GetByID(ctx, item.ProductID)
		if err == nil {
			item.Product = p
			out.TotalPrice += p.PriceShmeckles * float64(item.Quantity)
		}
		out.Items = append(out.Items, item)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return out, nil
}
