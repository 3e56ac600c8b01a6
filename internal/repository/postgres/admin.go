package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

const adminColumns = `id, restaurant_id, email, name, password_hash, last_login_at, created_at`

type adminRepo struct {
	pool *pgxpool.Pool
}

func scanAdmin(row pgx.Row) (*repository.Admin, error) {
	var a repository.Admin
	if err := row.Scan(&a.ID, &a.RestaurantID, &a.Email, &a.Name, &a.PasswordHash, &a.LastLoginAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) FindByID(ctx context.Context, id int64) (*repository.Admin, error) {
	a, err := scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*repository.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := scanAdmin(r.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *adminRepo) List(ctx context.Context) ([]*repository.Admin, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*repository.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *adminRepo) Create(ctx context.Context, admin *repository.Admin) (*repository.Admin, error) {
	if admin == nil {
		return nil, errors.New("admin is nil")
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	err := r.pool.QueryRow(ctx, `INSERT INTO admins(restaurant_id, email, name, password_hash, last_login_at, created_at)
        VALUES($1, $2, $3, $4, $5, $6) RETURNING id`,
		admin.RestaurantID, admin.Email, admin.Name, admin.PasswordHash, admin.LastLoginAt, admin.CreatedAt).Scan(&admin.ID)
	if err != nil {
		return nil, conflict(err)
	}
	return admin, nil
}

func (r *adminRepo) TouchLogin(ctx context.Context, id int64, at int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admins SET last_login_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
