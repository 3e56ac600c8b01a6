package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type customerRepo struct {
	db *sql.DB
}

func (r *customerRepo) FindByID(ctx context.Context, id int64) (*repository.Customer, error) {
	const query = `SELECT id, name, email, phone FROM customers WHERE id = ?`
	var c repository.Customer
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *repository.Customer) (*repository.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	const stmt = `INSERT INTO customers(name, email, phone) VALUES(?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt, customer.Name, customer.Email, customer.Phone)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	customer.ID = id
	return customer, nil
}
