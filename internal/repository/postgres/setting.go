package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type settingRepo struct {
	pool *pgxpool.Pool
}

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	var s repository.Setting
	err := r.pool.QueryRow(ctx, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO settings(key, value, updated_at) VALUES($1, $2, $3)
        ON CONFLICT(key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		setting.Key, setting.Value, setting.UpdatedAt)
	return err
}
