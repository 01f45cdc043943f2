// Package database opens the relational store shared by the employee and
// review tables and installs the employee/department schema.
//
// The reviews table is not part of the migrations, it's owned by the
// reviewing storage which creates and drops it on request.
package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/go-sqlx/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func init() {
	// modernc registers itself as "sqlite" which sqlx doesn't know about.
	sqlx.BindDriver(string(SQLite), sqlx.QUESTION)
}

// ParseDialect maps a configured driver name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unknown database driver: %q", name)
	}
}

func (d Dialect) gooseDialect() goose.Dialect {
	if d == Postgres {
		return goose.DialectPostgres
	}

	return goose.DialectSQLite3
}

// DB is a sqlx handle that remembers which dialect it talks.
type DB struct {
	*sqlx.DB
	Dialect Dialect
}

// Open connects to the database and verifies the connection is usable.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// Migrate brings the departments and employees tables up to date.
func Migrate(ctx context.Context, db *DB) error {
	fsys, err := fs.Sub(migrations, "migrations/"+string(db.Dialect))
	if err != nil {
		return fmt.Errorf("failed to find migrations for %s: %w", db.Dialect, err)
	}

	provider, err := goose.NewProvider(db.Dialect.gooseDialect(), db.DB.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, r := range results {
		slog.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}

	return nil
}
