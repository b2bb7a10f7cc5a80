package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxConns bounds the pool. Snapshot writes are the only traffic and the
// manager runs at most a handful of them at once.
const MaxConns = 4

// DB is the connection pool of the snapshot database.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to the snapshot database at dsn.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	cfg.MaxConns = MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the pool snapshot repositories run on.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
