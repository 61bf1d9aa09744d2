package product

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

const productColumns = `
p.id, p.name, COALESCE(p.description, ''), COALESCE(p.image_url, ''), p.price_shmeckles, p.price_flurbos,
c.id, c.name, c.description
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
ORDER BY p.id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}

	if err := r.attachTags(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%d error=%v", id, err)
		return nil, err
	}

	list := []domain.Product{*p}
	if err := r.attachTags(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var categoryID *int64
	if p.Category != nil {
		var id int64
		err := tx.QueryRow(ctx, `
INSERT INTO categories (name, description)
VALUES ($1, NULLIF($2, ''))
ON CONFLICT (name) DO UPDATE SET description = COALESCE(EXCLUDED.description, categories.description)
RETURNING id
`, p.Category.Name, p.Category.Description).Scan(&id)
		if err != nil {
			return nil, err
		}
		categoryID = &id
	}

	var productID int64
	err = tx.QueryRow(ctx, `
INSERT INTO products (name, description, image_url, price_shmeckles, price_flurbos, category_id)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    image_url = EXCLUDED.image_url,
    price_shmeckles = EXCLUDED.price_shmeckles,
    price_flurbos = EXCLUDED.price_flurbos,
    category_id = EXCLUDED.category_id
RETURNING id
`, p.Name, p.Description, p.ImageURL, p.PriceShmeckles, p.PriceFlurbos, categoryID).Scan(&productID)
	if err != nil {
		r.logger.Printf("product repo: upsert name=%q error=%v", p.Name, err)
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM product_tags WHERE product_id = $1`, productID); err != nil {
		return nil, err
	}
	for _, tag := range p.Tags {
		var tagID int64
		if err := tx.QueryRow(ctx, `
INSERT INTO tags (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`, tag.Name).Scan(&tagID); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING
`, productID, tagID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: upserted name=%q id=%d", p.Name, productID)
	return r.GetByID(ctx, productID)
}

func (r *postgresRepo) attachTags(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	for i := range products {
		if products[i].Tags == nil {
			products[i].Tags = []domain.Tag{}
		}
		ids = append(ids, products[i].ID)
	}

	const q = `
SELECT pt.product_id, t.id, t.name
FROM product_tags pt
JOIN tags t ON t.id = pt.tag_id
WHERE pt.product_id = ANY($1)
ORDER BY t.name ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: tags error=%v", err)
		return err
	}
	defer rows.Close()

	byID := map[int64][]domain.Tag{}
	for rows.Next() {
		var productID int64
		var tag domain.Tag
		if err := rows.Scan(&productID, &tag.ID, &tag.Name); err != nil {
			return err
		}
		byID[productID] = append(byID[productID], tag)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range products {
		if tags, ok := byID[products[i].ID]; ok {
			products[i].Tags = tags
		}
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var catID *int64
	var catName, catDesc *string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.PriceShmeckles, &p.PriceFlurbos, &catID, &catName, &catDesc); err != nil {
		return nil, err
	}
	if catID != nil {
		cat := domain.Category{ID: *catID}
		if catName != nil {
			cat.Name = *catName
		}
		if catDesc != nil {
			cat.Description = *catDesc
		}
		p.Category = &cat
	}
	return &p, nil
}
