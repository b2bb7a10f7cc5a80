package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/db"
	"github.com/udisondev/seed/internal/savegame"
	"github.com/udisondev/seed/internal/seed"
)

// openStore opens the snapshot store selected by cfg. A nil store means
// snapshots are disabled. close releases the store.
func openStore(ctx context.Context, cfg config.StorageConfig) (seed.SnapshotStore, func(), error) {
	switch cfg.Driver {
	case config.StorageNone:
		slog.Info("snapshot storage disabled")
		return nil, func() {}, nil

	case config.StorageLevelDB:
		s, err := savegame.OpenLevelStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("closing snapshot store", "error", err)
			}
		}, nil

	case config.StoragePostgres:
		dsn := cfg.Database.DSN()
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("database connected")
		if err := db.RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, nil, err
		}
		slog.Info("database migrations applied")
		return db.NewSnapshotRepository(database.Pool()), database.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
