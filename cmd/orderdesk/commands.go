package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/bootstrap"
	"github.com/orderdesk/orderdesk/internal/migrations"
)

func init() {
	// Migrate
	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(db *bootstrap.Database) error {
				return migrations.Up(db.SQL, db.Dialect)
			})
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(db *bootstrap.Database) error {
				return migrations.Down(db.SQL, db.Dialect)
			})
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(db *bootstrap.Database) error {
				return migrations.Status(db.SQL, db.Dialect)
			})
		},
	})
	rootCmd.AddCommand(migrateCmd)

	// Backup
	var backupOutput string
	var backupCompress bool
	var backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Backup the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !isSQLite(cfg.DB.Driver) {
				return fmt.Errorf("backup only supports sqlite, use pg_dump for postgres / 仅支持 sqlite 备份")
			}
			target := backupOutput
			if target == "" {
				backupDir := "data/backups"
				if err := os.MkdirAll(backupDir, 0o755); err != nil {
					return fmt.Errorf("create backup dir: %w", err)
				}
				ext := ".db"
				if backupCompress {
					ext += ".gz"
				}
				target = filepath.Join(backupDir, fmt.Sprintf("orderdesk_%s%s", time.Now().Format("20060102_150405"), ext))
			}

			db, err := bootstrap.OpenSQLite(cfg.DB.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			tempFile := target
			if backupCompress {
				tempFile = strings.TrimSuffix(target, ".gz")
				if tempFile == target {
					tempFile = target + ".tmp"
				}
			}
			if _, err := db.ExecContext(cmd.Context(), "VACUUM INTO ?", tempFile); err != nil {
				return fmt.Errorf("sqlite vacuum into: %w", err)
			}
			if backupCompress {
				err := compressFile(tempFile, target)
				os.Remove(tempFile)
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup created at %s\n", target)
			return nil
		},
	}
	backupCmd.Flags().StringVar(&backupOutput, "output", "", "Output file path")
	backupCmd.Flags().BoolVar(&backupCompress, "compress", false, "Compress output with gzip")
	rootCmd.AddCommand(backupCmd)

	// Restore
	rootCmd.AddCommand(&cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore the SQLite database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !isSQLite(cfg.DB.Driver) {
				return fmt.Errorf("restore only supports sqlite / 仅支持 sqlite 恢复")
			}
			backupPath := args[0]
			if _, err := os.Stat(backupPath); err != nil {
				return fmt.Errorf("backup file not found: %w", err)
			}

			dbPath := cfg.DB.Path
			if _, err := os.Stat(dbPath); err == nil {
				bakPath := dbPath + ".pre_restore_" + time.Now().Format("20060102_150405")
				if err := copyFile(dbPath, bakPath); err != nil {
					return fmt.Errorf("backup current db: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current database backed up to %s\n", bakPath)
			}

			source := backupPath
			if strings.HasSuffix(backupPath, ".gz") {
				tempSource := dbPath + ".restoring"
				if err := decompressFile(backupPath, tempSource); err != nil {
					return fmt.Errorf("decompress failed: %w", err)
				}
				defer os.Remove(tempSource)
				source = tempSource
			}
			if err := copyFile(source, dbPath); err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database restored successfully.")
			return nil
		},
	})
}

// withDatabase opens the configured database without migrating it.
func withDatabase(ctx context.Context, fn func(db *bootstrap.Database) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := bootstrap.OpenDatabase(ctx, cfg.DB, newLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func isSQLite(driver string) bool {
	d := strings.ToLower(driver)
	return d == "" || d == "sqlite"
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer gr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, gr)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
