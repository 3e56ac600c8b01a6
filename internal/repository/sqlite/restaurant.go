package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type restaurantRepo struct {
	db *sql.DB
}

func (r *restaurantRepo) FindByID(ctx context.Context, id int64) (*repository.Restaurant, error) {
	const query = `SELECT id, name, created_at FROM restaurants WHERE id = ?`
	var rest repository.Restaurant
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&rest.ID, &rest.Name, &rest.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &rest, nil
}

func (r *restaurantRepo) List(ctx context.Context) ([]*repository.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM restaurants ORDER BY id`)
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
	var (
		res sql.Result
		err error
	)
	if restaurant.ID > 0 {
		res, err = r.db.ExecContext(ctx, `INSERT INTO restaurants(id, name, created_at) VALUES(?, ?, ?)`,
			restaurant.ID, restaurant.Name, restaurant.CreatedAt)
	} else {
		res, err = r.db.ExecContext(ctx, `INSERT INTO restaurants(name, created_at) VALUES(?, ?)`,
			restaurant.Name, restaurant.CreatedAt)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	restaurant.ID = id
	return restaurant, nil
}
