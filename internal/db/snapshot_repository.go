package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/seed/internal/savegame"
	"github.com/udisondev/seed/internal/seed"
)

// SnapshotInfo describes a stored snapshot without decoding it.
type SnapshotInfo struct {
	Name       string
	Schema     int
	Generation uuid.UUID
	Instances  int
	Existing   int
	Classes    int
	SavedAt    time.Time
}

// SnapshotRepository keeps encoded distribution snapshots in PostgreSQL.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save stores snap under its name, replacing an earlier snapshot (UPSERT).
func (r *SnapshotRepository) Save(ctx context.Context, snap *seed.Snapshot) error {
	doc, err := savegame.Encode(snap)
	if err != nil {
		return err
	}

	var generation *string
	if _, err := uuid.Parse(snap.Generation); err == nil {
		generation = &snap.Generation
	}

	query := `
		INSERT INTO seed_snapshots
			(name, schema_version, generation, document, instance_count, existing_count, class_count, saved_at)
		VALUES ($1, $2, $3::uuid, $4, $5, $6, $7, NOW())
		ON CONFLICT (name) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			generation = EXCLUDED.generation,
			document = EXCLUDED.document,
			instance_count = EXCLUDED.instance_count,
			existing_count = EXCLUDED.existing_count,
			class_count = EXCLUDED.class_count,
			saved_at = EXCLUDED.saved_at
	`

	_, err = r.pool.Exec(ctx, query,
		snap.Name, snap.Schema, generation, doc,
		len(snap.Instances), snap.NumExisting, len(snap.Classes),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snap.Name, err)
	}
	return nil
}

// Load returns the snapshot stored under name, or savegame.ErrNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, name string) (*seed.Snapshot, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM seed_snapshots WHERE name = $1`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading snapshot %s: %w", name, savegame.ErrNotFound)
		}
		return nil, fmt.Errorf("loading snapshot %s: %w", name, err)
	}
	return savegame.Decode(doc)
}

// Info returns the stored statistics of a snapshot.
func (r *SnapshotRepository) Info(ctx context.Context, name string) (SnapshotInfo, error) {
	query := `
		SELECT name, schema_version, COALESCE(generation::text, ''), instance_count, existing_count, class_count, saved_at
		FROM seed_snapshots
		WHERE name = $1
	`

	var (
		info       SnapshotInfo
		generation string
	)
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&info.Name, &info.Schema, &generation, &info.Instances, &info.Existing, &info.Classes, &info.SavedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SnapshotInfo{}, fmt.Errorf("querying snapshot %s: %w", name, savegame.ErrNotFound)
		}
		return SnapshotInfo{}, fmt.Errorf("querying snapshot %s: %w", name, err)
	}
	if generation != "" {
		if info.Generation, err = uuid.Parse(generation); err != nil {
			return SnapshotInfo{}, fmt.Errorf("parsing generation of snapshot %s: %w", name, err)
		}
	}
	return info, nil
}

// Delete removes the snapshot stored under name.
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM seed_snapshots WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", name, err)
	}
	return nil
}

// Names returns the names of every stored snapshot in order.
func (r *SnapshotRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM seed_snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}
	return names, nil
}
