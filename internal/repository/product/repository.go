package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// Upsert inserts or updates a product by name, along with its
	// category and tags. The seeder and the importer use it.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
