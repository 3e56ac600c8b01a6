package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/orderdesk/orderdesk/internal/repository"
)

const productColumns = `id, restaurant_id, name, price::text, description, category, views, created_at`

type productRepo struct {
	pool *pgxpool.Pool
}

func scanProduct(row pgx.Row) (*repository.Product, error) {
	var (
		p     repository.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.RestaurantID, &p.Name, &price, &p.Description, &p.Category, &p.Views, &p.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse product %d price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return &p, nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*repository.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE restaurant_id = $1`
	args := []any{filter.RestaurantID}
	if filter.OrderByViews {
		query += ` ORDER BY views DESC, id ASC`
	} else {
		query += ` ORDER BY id ASC`
	}
	if filter.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *productRepo) Create(ctx context.Context, product *repository.Product) (*repository.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO products(restaurant_id, name, price, description, category, views, created_at)
        VALUES($1, $2, $3::numeric, $4, $5, $6, $7) RETURNING id`,
		product.RestaurantID,
		product.Name,
		product.Price.String(),
		product.Description,
		product.Category,
		product.Views,
		product.CreatedAt,
	).Scan(&product.ID)
	if err != nil {
		return nil, err
	}
	return product, nil
}
