package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const orderQ = `
INSERT INTO orders (user_id, status, delivery_address, phone, total_price)
VALUES ($1, $2, $3, NULLIF($4, ''), $5)
RETURNING id, created_at
`
	out := o
	if err := tx.QueryRow(ctx, orderQ, o.UserID, o.Status, o.DeliveryAddress, o.Phone, o.TotalPrice).Scan(&out.ID, &out.CreatedAt); err != nil {
		r.logger.Printf("order repo: create user_id=%d error=%v", o.UserID, err)
		return nil, err
	}

	const itemQ = `
INSERT INTO order_items (order_id, product_id, product_name, price_shmeckles, price_flurbos, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	out.Items = make([]domain.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.OrderID = out.ID
		if err := tx.QueryRow(ctx, itemQ, out.ID, item.ProductID, item.ProductName, item.PriceShmeckles, item.PriceFlurbos, item.Quantity).Scan(&item.ID); err != nil {
			return nil, err
		}
		out.Items[i] = item
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const q = `
SELECT id, user_id, status, delivery_address, COALESCE(phone, ''), total_price, created_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("order repo: list user_id=%d error=%v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.DeliveryAddress, &o.Phone, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.fetchItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, userID, id int64) (*domain.Order, error) {
	const q = `
SELECT id, user_id, status, delivery_address, COALESCE(phone, ''), total_price, created_at
FROM orders
WHERE id = $1 AND user_id = $2
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id, userID).Scan(&o.ID, &o.UserID, &o.Status, &o.DeliveryAddress, &o.Phone, &o.TotalPrice, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%d error=%v", id, err)
		return nil, err
	}

	items, err := r.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *postgresRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `
SELECT id, user_id, status, delivery_address, COALESCE(phone, ''), total_price, created_at
FROM orders
WHERE id = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.UserID, &o.Status, &o.DeliveryAddress, &o.Phone, &o.TotalPrice, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%d error=%v", id, err)
		return nil, err
	}

	items, err := r.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, product_id, product_name, price_shmeckles, price_flurbos, quantity
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.PriceShmeckles, &item.PriceFlurbos, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
