package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type restaurantRepo struct {
	pool *pgxpool.Pool
}

func (r *restaurantRepo) FindByID(ctx context.Context, id int64) (*repository.Restaurant, error) {
	var rest repository.Restaurant
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM restaurants WHERE id = $1`, id).
		Scan(&rest.ID, &rest.Name, &rest.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &rest, nil
}

func (r *restaurantRepo) List(ctx context.Context) ([]*repository.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Restaurant
	for rows.Next() {
		var rest repository.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &rest)
	}
	return list, rows.Err()
}

func (r *restaurantRepo) Create(ctx context.Context, restaurant *repository.Restaurant) (*repository.Restaurant, error) {
	if restaurant == nil {
		return nil, errors.New("restaurant is nil")
	}
	if restaurant.ID <= 0 {
		err := r.pool.QueryRow(ctx, `INSERT INTO restaurants(name, created_at) VALUES($1, $2) RETURNING id`,
			restaurant.Name, restaurant.CreatedAt).Scan(&restaurant.ID)
		if err != nil {
			return nil, conflict(err)
		}
		return restaurant, nil
	}

	// 显式 ID 插入后需要同步序列，否则后续自增会撞车。
	if _, err := r.pool.Exec(ctx, `INSERT INTO restaurants(id, name, created_at) VALUES($1, $2, $3)`,
		restaurant.ID, restaurant.Name, restaurant.CreatedAt); err != nil {
		return nil, conflict(err)
	}
	if _, err := r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('restaurants', 'id'), (SELECT MAX(id) FROM restaurants))`); err != nil {
		return nil, err
	}
	return restaurant, nil
}
