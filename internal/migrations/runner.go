// 文件路径: internal/migrations/runner.go
// 模块说明: 使用 goose 执行内嵌的数据库迁移，SQLite 与 Postgres 各有一套脚本。
package migrations

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Dialect 目标数据库类型。
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func setup(dialect Dialect) (string, error) {
	var (
		gooseDialect string
		base         fs.FS
	)
	switch dialect {
	case DialectSQLite, "":
		gooseDialect, base, dialect = "sqlite3", SQLite, DialectSQLite
	case DialectPostgres:
		gooseDialect, base = "postgres", Postgres
	default:
		return "", fmt.Errorf("unsupported migration dialect %q / 不支持的迁移方言", dialect)
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return "", err
	}
	goose.SetBaseFS(base)
	return string(dialect), nil
}

// Up migrates the schema to the latest version.
func Up(db *sql.DB, dialect Dialect) error {
	dir, err := setup(dialect)
	if err != nil {
		return err
	}
	return goose.Up(db, dir)
}

// Down rolls back a single migration.
func Down(db *sql.DB, dialect Dialect) error {
	dir, err := setup(dialect)
	if err != nil {
		return err
	}
	return goose.Down(db, dir)
}

// Status prints migration status.
func Status(db *sql.DB, dialect Dialect) error {
	dir, err := setup(dialect)
	if err != nil {
		return err
	}
	return goose.Status(db, dir)
}
