package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MigrateUp applies every up migration in lexical order. Statements are idempotent.
func MigrateUp(ctx context.Context, db Execer) error {
	return applyMigrations(ctx, db, ".up.sql", false)
}

// MigrateDown reverts in reverse lexical order.
func MigrateDown(ctx context.Context, db Execer) error {
	return applyMigrations(ctx, db, ".down.sql", true)
}

func applyMigrations(ctx context.Context, db Execer, suffix string, reverse bool) error {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	}
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.Exec(ctx, string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, execErr)
		}
	}
	return nil
}
