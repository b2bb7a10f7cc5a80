package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// MigrateFunc brings the schema at dsn up to date.
type MigrateFunc func(ctx context.Context, dsn string) error

// PostgresDSN starts a throwaway PostgreSQL container for the snapshot store and
// returns its connection string. Skipped with -short.
func PostgresDSN(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping snapshot store test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("seed"),
		postgres.WithUsername("seed"),
		postgres.WithPassword("seed"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		tb.Fatalf("starting snapshot store container: %v", err)
	}
	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			tb.Logf("terminating snapshot store container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tb.Fatalf("getting snapshot store dsn: %v", err)
	}
	return dsn
}

// SnapshotDB returns a pool on a fresh snapshot store migrated with migrate.
func SnapshotDB(tb testing.TB, migrate MigrateFunc) *pgxpool.Pool {
	tb.Helper()
	dsn := PostgresDSN(tb)
	ctx := context.Background()

	if err := migrate(ctx, dsn); err != nil {
		tb.Fatalf("migrating snapshot store: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		tb.Fatalf("connecting to snapshot store: %v", err)
	}
	tb.Cleanup(pool.Close)
	return pool
}

// CountSnapshots returns the number of stored distribution snapshots.
func CountSnapshots(tb testing.TB, pool *pgxpool.Pool) int {
	tb.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM seed_snapshots").Scan(&n); err != nil {
		tb.Fatalf("counting snapshots: %v", err)
	}
	return n
}
