// 文件路径: internal/repository/sqlite/helpers.go
package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/orderdesk/orderdesk/internal/repository"
)

type scanner interface {
	Scan(dest ...any) error
}

// inClause returns "?,?,?" for n values plus the values as driver args.
func inClause(values []string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ","), args
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func requireOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
