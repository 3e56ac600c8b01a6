package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type customerRepo struct {
	pool *pgxpool.Pool
}

func (r *customerRepo) FindByID(ctx context.Context, id int64) (*repository.Customer, error) {
	var c repository.Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, phone FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *repository.Customer) (*repository.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO customers(name, email, phone) VALUES($1, $2, $3) RETURNING id`,
		customer.Name, customer.Email, customer.Phone).Scan(&customer.ID)
	if err != nil {
		return nil, err
	}
	return customer, nil
}
