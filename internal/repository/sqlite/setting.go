// 文件路径: internal/repository/sqlite/setting.go
package sqlite

import (
	"context"
	"database/sql"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type settingRepo struct {
	db *sql.DB
}

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	const query = `SELECT key, value, updated_at FROM settings WHERE key = ?`
	var s repository.Setting
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	const stmt = `INSERT INTO settings(key, value, updated_at) VALUES(?, ?, ?)
                  ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, stmt, setting.Key, setting.Value, setting.UpdatedAt)
	return err
}
