package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type statusEventRepo struct {
	db *sql.DB
}

func (r *statusEventRepo) Append(ctx context.Context, event *repository.StatusEvent) error {
	if event == nil {
		return errors.New("status event is nil")
	}
	const stmt = `INSERT INTO order_status_events(id, order_id, restaurant_id, action, from_status, to_status, actor, created_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, stmt,
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
	const query = `SELECT id, order_id, restaurant_id, action, from_status, to_status, actor, created_at
        FROM order_status_events WHERE order_id = ? ORDER BY created_at ASC, rowid ASC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM order_status_events WHERE created_at < ?`, beforeUnix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
