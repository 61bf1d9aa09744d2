package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	cartID, err := r.ensureCart(ctx, r.pool, userID)
	if err != nil {
		return nil, err
	}
	return r.fetchCart(ctx, cartID, userID)
}

func (r *postgresRepo) AddItem(ctx context.Context, userID int64, product domain.Product, quantity int) (*domain.CartItem, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := r.ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING id, cart_id, product_id, quantity, created_at
`
	var item domain.CartItem
	if err := tx.QueryRow(ctx, q, cartID, product.ID, quantity).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	p := product
	item.Product = &p
	return &item, nil
}

func (r *postgresRepo) UpdateItemQuantity(ctx context.Context, userID, itemID int64, quantity int) (*domain.CartItem, error) {
	const q = `
UPDATE cart_items ci
SET quantity = $1
FROM carts c
WHERE ci.id = $2 AND ci.cart_id = c.id AND c.user_id = $3
RETURNING ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at
`
	var item domain.CartItem
	err := r.pool.QueryRow(ctx, q, quantity, itemID, userID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, itemID int64) error {
	const q = `
DELETE FROM cart_items ci
USING carts c
WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2
`
	cmd, err := r.pool.Exec(ctx, q, itemID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Merge(ctx context.Context, userID int64, lines []MergeLine) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cartID, err := r.ensureCart(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
SELECT $1, $2, $3
WHERE EXISTS (SELECT 1 FROM products WHERE id = $2)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`
	for _, line := range lines {
		if _, err := tx.Exec(ctx, q, cartID, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.fetchCart(ctx, cartID, userID)
}

func (r *postgresRepo) Clear(ctx context.Context, userID int64) error {
	const q = `
DELETE FROM cart_items ci
USING carts c
WHERE ci.cart_id = c.id AND c.user_id = $1
`
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *postgresRepo) ensureCart(ctx context.Context, q queryRower, userID int64) (int64, error) {
	const query = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id
`
	var id int64
	if err := q.QueryRow(ctx, query, userID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartID, userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{ID: cartID, UserID: userID, Items: []domain.CartItem{}}

	const q = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at,
       p.id, p.name, COALESCE(p.description, ''), COALESCE(p.image_url, ''), p.price_shmeckles, p.price_flurbos
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		var p domain.Product
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.CreatedAt,
			&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.PriceShmeckles, &p.PriceFlurbos,
		); err != nil {
			return nil, err
		}
		p.Tags = []domain.Tag{}
		item.Product = &p
		cart.Items = append(cart.Items, item)
		cart.TotalPrice += p.PriceShmeckles * float64(item.Quantity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}
