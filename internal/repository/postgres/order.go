package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

const orderColumns = `o.id, o.restaurant_id, o.product_id, o.customer_id, o.quantity, o.status, o.payment_method, o.created_at, o.updated_at`

type orderRepo struct {
	pool *pgxpool.Pool
}

func scanOrder(row pgx.Row, extra ...any) (*repository.Order, error) {
	var o repository.Order
	dest := append([]any{
		&o.ID, &o.RestaurantID, &o.ProductID, &o.CustomerID, &o.Quantity,
		&o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*repository.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (r *orderRepo) ListLines(ctx context.Context, filter repository.OrderLineFilter) ([]repository.OrderLine, error) {
	query := `SELECT o.id, o.product_id, p.name, o.quantity, o.status
        FROM orders o
        INNER JOIN products p ON p.id = o.product_id
        WHERE o.restaurant_id = $1`
	args := []any{filter.RestaurantID}
	if len(filter.Statuses) > 0 {
		query += ` AND o.status = ANY($2)`
		args = append(args, filter.Statuses)
	}
	query += ` ORDER BY o.id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
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
        WHERE o.restaurant_id = $1`
	args := []any{filter.RestaurantID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND o.status = $%d`, len(args))
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
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
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders WHERE restaurant_id = $1 GROUP BY status ORDER BY status`, restaurantID)
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
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, status, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepo) Create(ctx context.Context, order *repository.Order) (*repository.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO orders(restaurant_id, product_id, customer_id, quantity, status, payment_method, created_at, updated_at)
        VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		order.RestaurantID,
		order.ProductID,
		order.CustomerID,
		order.Quantity,
		order.Status,
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return nil, err
	}
	return order, nil
}
