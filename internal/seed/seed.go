package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	ID             int64
	Name           string
	Description    string
	PriceShmeckles float64
	PriceFlurbos   float64
}

// demoCatalog mirrors the storefront's demo product set. Flurbo prices
// follow the fixed 100:1 shmeckle exchange rate.
var demoCatalog = []productSeed{
	{ID: 101, Name: "Смарт-часы Pro", Description: "Стильные и многофункциональные смарт-часы.", PriceShmeckles: 15000, PriceFlurbos: 150},
	{ID: 102, Name: "Беспроводные наушники Air", Description: "Кристально чистый звук без проводов.", PriceShmeckles: 8000, PriceFlurbos: 80},
	{ID: 103, Name: "Ноутбук UltraBook X", Description: "Мощный и легкий ноутбук для работы и развлечений.", PriceShmeckles: 85000, PriceFlurbos: 850},
	{ID: 104, Name: "Кофемашина Barista", Description: "Идеальный эспрессо каждое утро.", PriceShmeckles: 25000, PriceFlurbos: 250},
	{ID: 105, Name: "Игровая консоль NextGen", Description: "Погрузитесь в мир игр нового поколения.", PriceShmeckles: 45000, PriceFlurbos: 450},
	{ID: 106, Name: "Электрический самокат City", Description: "Быстрое и экологичное передвижение по городу.", PriceShmeckles: 32000, PriceFlurbos: 320},
	{ID: 107, Name: "Умная колонка Voice", Description: "Ваш персональный ассистент с отличным звуком.", PriceShmeckles: 7000, PriceFlurbos: 70},
	{ID: 108, Name: "Рюкзак TravelPro", Description: "Надежный рюкзак для путешествий и города.", PriceShmeckles: 6000, PriceFlurbos: 60},
	{ID: 109, Name: "Внешний аккумулятор Power+", Description: "Зарядит ваши устройства в любом месте.", PriceShmeckles: 3500, PriceFlurbos: 35},
	{ID: 110, Name: "4K Монитор ViewMax", Description: "Потрясающая детализация изображения.", PriceShmeckles: 28000, PriceFlurbos: 280},
}

// Apply upserts the demo catalog and reports how many products it
// wrote. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	const q = `
INSERT INTO products (id, name, description, price_shmeckles, price_flurbos)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE
SET description = EXCLUDED.description,
    price_shmeckles = EXCLUDED.price_shmeckles,
    price_flurbos = EXCLUDED.price_flurbos
`
	for _, p := range demoCatalog {
		if _, err := pool.Exec(ctx, q, p.ID, p.Name, p.Description, p.PriceShmeckles, p.PriceFlurbos); err != nil {
			return 0, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}

	// Seeded products carry fixed ids, so the identity sequence has to
	// start past them.
	const bump = `
SELECT setval(pg_get_serial_sequence('products', 'id'),
              GREATEST((SELECT MAX(id) FROM products), 1))
`
	if _, err := pool.Exec(ctx, bump); err != nil {
		return 0, fmt.Errorf("bump products sequence: %w", err)
	}
	return len(demoCatalog), nil
}
