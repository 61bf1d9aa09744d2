package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
)

type Memory struct {
	mu       sync.Mutex
	nextID   int64
	nextItem int64
	orders   map[int64]domain.Order
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, nextItem: 1, orders: map[int64]domain.Order{}}
}

func (r *Memory) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	o.CreatedAt = time.Now().UTC()
	for i := range o.Items {
		o.Items[i].ID = r.nextItem
		o.Items[i].OrderID = o.ID
		r.nextItem++
	}
	r.orders[o.ID] = o
	out := o
	return &out, nil
}

func (r *Memory) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *Memory) GetByID(_ context.Context, userID, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	out := o
	return &out, nil
}

func (r *Memory) Get(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := o
	return &out, nil
}

func (r *Memory) SetStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}
