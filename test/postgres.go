package test

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gaqzi/employee-reviews/internal/platform/database"
)

// StartPostgres runs a throwaway postgres with the employee schema installed.
func StartPostgres(ctx context.Context) (err error, conn string, done func()) {
	postgresContainer, err := postgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		postgres.WithDatabase("employee_reviews"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres: %w", err), "", func() {}
	}

	terminate := func() {
		if err := testcontainers.TerminateContainer(postgresContainer); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}

	connectionString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return fmt.Errorf("failed to get postgres connection string: %w", err), "", func() {}
	}

	db, err := database.Open(ctx, database.Postgres, connectionString)
	if err != nil {
		terminate()
		return err, "", func() {}
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		terminate()
		return err, "", func() {}
	}

	return nil, connectionString, terminate
}

// Postgres starts a postgres for the test and stops it when the test is done.
// Skipped in -short mode since it needs docker.
func Postgres(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err, conn, done := StartPostgres(ctx)
	if err != nil {
		t.Fatalf("failed to start postgres: %s", err)
	}
	t.Cleanup(done)

	db, err := database.Open(context.Background(), database.Postgres, conn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %s", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// SQLite opens a fresh in-memory database with the employee schema installed.
func SQLite(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.SQLite, SQLiteMemoryDSN())
	if err != nil {
		t.Fatalf("failed to open sqlite: %s", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate sqlite: %s", err)
	}

	return db
}
