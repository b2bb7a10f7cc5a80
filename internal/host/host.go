// Package host wires the in-process world that distributions run against: the
// region grid, model catalog, ground, spawn manager and image maps.
package host

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/geo"
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/seed"
	"github.com/udisondev/seed/internal/spawn"
	"github.com/udisondev/seed/internal/world"
)

var (
	_ seed.SpawnService       = (*spawn.Manager)(nil)
	_ seed.Flusher            = (*spawn.Manager)(nil)
	_ seed.ModelService       = (*world.ModelCatalog)(nil)
	_ seed.CollisionService   = (*world.Shapes)(nil)
	_ seed.VisibilityService  = (*world.World)(nil)
	_ seed.GroundProbeService = (*geo.Engine)(nil)
	_ seed.ImageSource        = (*imagemap.Manager)(nil)
)

// FlatCells is the edge length in cells of the ground used without a heightmap.
const FlatCells = 1024

// Host is the in-process world distributions run against.
type Host struct {
	World   *world.World
	Models  *world.ModelCatalog
	Shapes  *world.Shapes
	Ground  *geo.Engine
	Spawner *spawn.Manager
	Defs    *data.Registry
	Images  *imagemap.Manager
	Quality seed.FixedQuality
}

// New builds the world, registers the configured models and loads the ground.
func New(cfg config.Server, defs *data.Registry) (*Host, error) {
	if cfg.Host.RegionSize != 0 && cfg.Host.RegionSize != world.RegionSize {
		slog.Warn("region size is fixed, ignoring config", "configured", cfg.Host.RegionSize, "regionSize", world.RegionSize)
	}

	h := &Host{
		World:   world.New(),
		Models:  world.NewModelCatalog(),
		Ground:  geo.NewEngine(),
		Defs:    defs,
		Images:  imagemap.NewManager(cfg.ImageDir),
		Quality: seed.FixedQuality(cfg.Quality.LODBias),
	}
	h.Shapes = world.NewShapes(h.Models)
	h.Spawner = spawn.NewManager(h.World, h.Models, h.Shapes, defs, cfg.Host.MaxEntities)
	h.World.Viewer().SetOrigin(cfg.Viewer)

	for _, m := range cfg.Host.Models {
		parts := m.MaxParts
		if parts <= 0 {
			parts = cfg.Host.MaxModelParts
		}
		h.Models.RegisterModel(m.Name, geom.Bounds{Min: m.Min, Max: m.Max}, parts)
	}

	if err := h.loadGround(cfg.Host); err != nil {
		return nil, err
	}

	slog.Info("host initialized",
		"regions", h.World.RegionCount(),
		"models", h.Models.Len(),
		"maxEntities", h.Spawner.MaxEntities())
	return h, nil
}

func (h *Host) loadGround(cfg config.HostConfig) error {
	cell := cfg.CellSize
	if cell <= 0 {
		cell = geo.DefaultCellSize
	}

	if cfg.Heightmap == "" {
		half := float64(FlatCells) * cell / 2
		h.Ground.LoadFlat(geom.Vec3{-half, -half, 0}, cell, FlatCells, FlatCells)
		return nil
	}

	id, err := h.Images.Load(cfg.Heightmap)
	if err != nil {
		return fmt.Errorf("loading heightmap: %w", err)
	}
	m, _ := h.Images.Map(id)
	origin := geom.Vec3{-float64(m.Width) * cell / 2, -float64(m.Height) * cell / 2, 0}
	scale := cfg.HeightScale
	if scale <= 0 {
		scale = geo.DefaultHeightScale
	}
	return h.Ground.LoadHeightmap(m, cell, scale, origin)
}

// RegisterInlineModels registers the geometry map entities carry themselves, that
// is entities whose model is their own name and that declare their bounds. It
// returns the number of models registered.
func (h *Host) RegisterInlineModels(m *data.Map, maxParts int) int {
	n := 0
	for _, e := range m.Entities {
		args := e.Spawnargs()
		if args.GetString("model", "") != e.Name || !args.Has("bounds_min") || !args.Has("bounds_max") {
			continue
		}
		h.Models.RegisterModel(e.Name, geom.Bounds{
			Min: args.GetVector("bounds_min", geom.Vec3{}),
			Max: args.GetVector("bounds_max", geom.Vec3{}),
		}, maxParts)
		n++
	}
	return n
}

// Services returns the host as distributions consume it.
func (h *Host) Services() seed.Host {
	return seed.Host{
		Models:     h.Models,
		Collision:  h.Shapes,
		Ground:     h.Ground,
		Visibility: h.World,
		Spawner:    h.Spawner,
		Defs:       h.Defs,
		Images:     h.Images,
		Viewer:     h.World.Viewer(),
		Quality:    h.Quality,
	}
}
