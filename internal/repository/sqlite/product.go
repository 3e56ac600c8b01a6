package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orderdesk/orderdesk/internal/repository"
)

const productColumns = `id, restaurant_id, name, price, description, category, views, created_at`

type productRepo struct {
	db *sql.DB
}

func scanProduct(s scanner) (*repository.Product, error) {
	var p repository.Product
	if err := s.Scan(&p.ID, &p.RestaurantID, &p.Name, &p.Price, &p.Description, &p.Category, &p.Views, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*repository.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE restaurant_id = ?`
	args := []any{filter.RestaurantID}
	if filter.OrderByViews {
		query += ` ORDER BY views DESC, id ASC`
	} else {
		query += ` ORDER BY id ASC`
	}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	const stmt = `INSERT INTO products(restaurant_id, name, price, description, category, views, created_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		product.RestaurantID,
		product.Name,
		product.Price.String(),
		product.Description,
		product.Category,
		product.Views,
		product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	product.ID = id
	return product, nil
}
