package product

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain"
)

type Memory struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]domain.Product
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, products: map[int64]domain.Product{}}
}

// Load replaces the catalog with fixed products, keeping their IDs.
// Tests use it to set up known data.
func (r *Memory) Load(products []domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = map[int64]domain.Product{}
	for _, p := range products {
		if p.Tags == nil {
			p.Tags = []domain.Tag{}
		}
		r.products[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
}

func (r *Memory) List(_ context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Memory) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *Memory) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Tags == nil {
		p.Tags = []domain.Tag{}
	}
	for id, existing := range r.products {
		if existing.Name == p.Name {
			p.ID = id
			r.products[id] = p
			out := p
			return &out, nil
		}
	}
	p.ID = r.nextID
	r.nextID++
	r.products[p.ID] = p
	out := p
	return &out, nil
}
