package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/orderdesk/orderdesk/internal/repository"
)

const adminColumns = `id, restaurant_id, email, name, password_hash, last_login_at, created_at`

type adminRepo struct {
	db *sql.DB
}

func scanAdmin(s scanner) (*repository.Admin, error) {
	var a repository.Admin
	if err := s.Scan(&a.ID, &a.RestaurantID, &a.Email, &a.Name, &a.PasswordHash, &a.LastLoginAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) FindByID(ctx context.Context, id int64) (*repository.Admin, error) {
	a, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*repository.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = ?`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *adminRepo) List(ctx context.Context) ([]*repository.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY id`)
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
	const stmt = `INSERT INTO admins(restaurant_id, email, name, password_hash, last_login_at, created_at)
                  VALUES(?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		admin.RestaurantID, admin.Email, admin.Name, admin.PasswordHash, admin.LastLoginAt, admin.CreatedAt)
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
	admin.ID = id
	return admin, nil
}

func (r *adminRepo) TouchLogin(ctx context.Context, id int64, at int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET last_login_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}
