// 文件路径: internal/migrations/sqlite_embed.go
package migrations

import "embed"

// SQLite embeds all SQLite-specific migration files.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres embeds all Postgres-specific migration files.
//
//go:embed postgres/*.sql
var Postgres embed.FS
