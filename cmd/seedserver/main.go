package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/host"
	"github.com/udisondev/seed/internal/seed"
	"github.com/udisondev/seed/internal/world"
)

const (
	ConfigPath = "config/seed.yaml"

	pvsInterval     = 100 * time.Millisecond
	pvsMaxAge       = 200 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := config.ConfigPath(ConfigPath)
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))
	slog.Info("seed server starting", "config", cfgPath, "log_level", cfg.LogLevel)

	scene, err := host.Load(ctx, cfg, time.Now())
	if err != nil {
		return err
	}
	mgr := scene.Manager

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer closeStore()

	if store != nil {
		if err := mgr.RestoreAll(ctx, store); err != nil {
			return fmt.Errorf("restoring distributions: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCanceled(mgr.Start(gctx))
	})

	g.Go(func() error {
		vm := world.NewVisibilityManager(scene.Host.World, pvsInterval, pvsMaxAge)
		return ignoreCanceled(vm.Start(gctx))
	})

	if store != nil {
		g.Go(func() error {
			return autosave(gctx, mgr, store, cfg.AutosaveInterval)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	if store != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mgr.SaveAll(saveCtx, store); err != nil {
			return fmt.Errorf("saving distributions on shutdown: %w", err)
		}
	}
	slog.Info("seed server stopped")
	return nil
}

// autosave stores every distribution each interval until ctx is canceled.
func autosave(ctx context.Context, mgr *seed.Manager, store seed.SnapshotStore, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("autosave started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := mgr.SaveAll(ctx, store); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
