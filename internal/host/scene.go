package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/seed"
)

// Scene is a map loaded into a host with its distributions prepared.
type Scene struct {
	Host    *Host
	Map     *data.Map
	Manager *seed.Manager
	Statics int
}

// Load reads the definitions and map named by cfg, builds the host, spawns the
// static entities and prepares every distribution. Distributions that fail to
// build or prepare are logged and left out or broken; only unreadable content is
// an error.
func Load(ctx context.Context, cfg config.Server, now time.Time) (*Scene, error) {
	defs, err := data.LoadDefs(cfg.DefsPath)
	if err != nil {
		return nil, fmt.Errorf("loading definitions: %w", err)
	}
	m, err := data.LoadMap(cfg.MapPath)
	if err != nil {
		return nil, fmt.Errorf("loading map: %w", err)
	}

	h, err := New(cfg, defs)
	if err != nil {
		return nil, fmt.Errorf("creating host: %w", err)
	}
	inline := h.RegisterInlineModels(m, cfg.Host.MaxModelParts)

	statics, err := seed.SpawnStatics(m, h.Services())
	if err != nil {
		slog.Warn("some map entities failed to spawn", "error", err)
	}

	dists, err := seed.BuildFromMap(m, h.Services(), now)
	if err != nil {
		slog.Warn("some distributions were skipped", "error", err)
	}

	mgr := seed.NewManager(h.Services(), cfg.TickInterval)
	for _, d := range dists {
		if err := mgr.Add(d); err != nil {
			return nil, err
		}
	}
	if err := mgr.PrepareAll(ctx, now); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		slog.Warn("some distributions failed to prepare", "error", err)
	}

	viewer := h.World.Viewer().Origin()
	slog.Info("map loaded",
		"map", m.Name,
		"inlineModels", inline,
		"statics", statics,
		"nearViewer", h.World.CountVisibleObjects(viewer.X(), viewer.Y()),
		"distributions", mgr.Len())
	return &Scene{Host: h, Map: m, Manager: mgr, Statics: statics}, nil
}
