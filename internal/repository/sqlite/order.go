package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orderdesk/orderdesk/internal/repository"
)

const orderColumns = `o.id, o.restaurant_id, o.product_id, o.customer_id, o.quantity, o.status, o.payment_method, o.created_at, o.updated_at`

type orderRepo struct {
	db *sql.DB
}

func scanOrder(s scanner, extra ...any) (*repository.Order, error) {
	var o repository.Order
	dest := append([]any{
		&o.ID, &o.RestaurantID, &o.ProductID, &o.CustomerID, &o.Quantity,
		&o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*repository.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (r *orderRepo) ListLines(ctx context.Context, filter repository.OrderLineFilter) ([]repository.OrderLine, error) {
	query := `SELECT o.id, o.product_id, p.name, o.quantity, o.status
        FROM orders o
        INNER JOIN products p ON p.id = o.product_id
        WHERE o.restaurant_id = ?`
	args := []any{filter.RestaurantID}
	if len(filter.Statuses) > 0 {
		in, statusArgs := inClause(filter.Statuses)
		query += ` AND o.status IN (` + in + `)`
		args = append(args, statusArgs...)
	}
	query += ` ORDER BY o.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]repository.OrderLine, 0)
	for rows.Next() {
		var l repository.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Status); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderListFilter) ([]*repository.OrderSummary, error) {
	query := `SELECT ` + orderColumns + `, COALESCE(p.name, ''), COALESCE(c.name, '')
        FROM orders o
        LEFT JOIN products p ON p.id = o.product_id
        LEFT JOIN customers c ON c.id = o.customer_id
        WHERE o.restaurant_id = ?`
	args := []any{filter.RestaurantID}
	if filter.Status != "" {
		query += ` AND o.status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.OrderSummary
	for rows.Next() {
		var productName, customerName string
		o, err := scanOrder(rows, &productName, &customerName)
		if err != nil {
			return nil, err
		}
		list = append(list, &repository.OrderSummary{Order: *o, ProductName: productName, CustomerName: customerName})
	}
	return list, rows.Err()
}

func (r *orderRepo) CountByStatus(ctx context.Context, restaurantID int64) ([]repository.StatusCount, error) {
	const query = `SELECT status, COUNT(*) FROM orders WHERE restaurant_id = ? GROUP BY status ORDER BY status`
	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.StatusCount
	for rows.Next() {
		var c repository.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status string, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, updatedAt, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *orderRepo) Create(ctx context.Context, order *repository.Order) (*repository.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	const stmt = `INSERT INTO orders(restaurant_id, product_id, customer_id, quantity, status, payment_method, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		order.RestaurantID,
		order.ProductID,
		order.CustomerID,
		order.Quantity,
		order.Status,
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	order.ID = id
	return order, nil
}
