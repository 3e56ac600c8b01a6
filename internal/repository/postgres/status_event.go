package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type statusEventRepo struct {
	pool *pgxpool.Pool
}

func (r *statusEventRepo) Append(ctx context.Context, event *repository.StatusEvent) error {
	if event == nil {
		return errors.New("status event is nil")
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO order_status_events(id, order_id, restaurant_id, action, from_status, to_status, actor, created_at)
        VALUES($1::uuid, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID,
		event.OrderID,
		event.RestaurantID,
		event.Action,
		event.FromStatus,
		event.ToStatus,
		event.Actor,
		event.CreatedAt,
	)
	return err
}

func (r *statusEventRepo) ListByOrder(ctx context.Context, orderID int64) ([]*repository.StatusEvent, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, order_id, restaurant_id, action, from_status, to_status, actor, created_at
        FROM order_status_events WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*repository.StatusEvent
	for rows.Next() {
		var e repository.StatusEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.RestaurantID, &e.Action, &e.FromStatus, &e.ToStatus, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *statusEventRepo) DeleteBefore(ctx context.Context, beforeUnix int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_status_events WHERE created_at < $1`, beforeUnix)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
