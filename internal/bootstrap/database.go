// 文件路径: internal/bootstrap/database.go
// 模块说明: 根据配置打开 SQLite 或 Postgres，执行迁移并返回统一的 repository.Store。
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/orderdesk/orderdesk/internal/config"
	"github.com/orderdesk/orderdesk/internal/migrations"
	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/repository/postgres"
	"github.com/orderdesk/orderdesk/internal/repository/sqlite"
)

// OpenSQLite ensures the parent directory exists, then opens a SQLite connection with sane pragmas.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite 路径不能为空 / SQLite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Database 是打开后的数据库句柄集合。
type Database struct {
	Dialect migrations.Dialect
	Store   repository.Store
	// SQL is the database/sql handle used by goose and maintenance commands.
	// For Postgres it is a bridge over Pool.
	SQL  *sql.DB
	Pool *pgxpool.Pool
}

// OpenDatabase opens the configured backend. It does not run migrations.
func OpenDatabase(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*Database, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", "driver", "sqlite", "path", cfg.Path)
		return &Database{Dialect: migrations.DialectSQLite, Store: sqlite.NewStore(db), SQL: db}, nil
	case "postgres", "postgresql", "pgx":
		pool, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Database{
			Dialect: migrations.DialectPostgres,
			Store:   postgres.NewStore(pool),
			SQL:     postgresSQLBridge(pool),
			Pool:    pool,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q / 不支持的数据库驱动", cfg.Driver)
	}
}

// Migrate applies all pending migrations.
func (d *Database) Migrate() error {
	return migrations.Up(d.SQL, d.Dialect)
}

// Close releases every handle.
func (d *Database) Close() error {
	var err error
	if d.SQL != nil {
		err = d.SQL.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	return err
}
