package testutil

import (
	"testing"

	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/geo"
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/seed"
	"github.com/udisondev/seed/internal/spawn"
	"github.com/udisondev/seed/internal/spawnargs"
	"github.com/udisondev/seed/internal/world"
)

// RockModel is registered by NewReferenceHost with an 8×8×8 footprint.
const RockModel = "models/rock.lwo"

// ReferenceHost is the in-process host wired the way the server wires it: a world
// with a model catalog, flat ground and a spawn manager.
type ReferenceHost struct {
	World   *world.World
	Models  *world.ModelCatalog
	Shapes  *world.Shapes
	Ground  *geo.Engine
	Spawner *spawn.Manager
	Defs    *data.Registry
	Images  *imagemap.Manager
	Quality seed.FixedQuality
}

// NewReferenceHost creates a host with flat ground at z=0 covering ±4096 units,
// the seed classes and an atdm:rock definition using RockModel.
func NewReferenceHost(tb testing.TB, maxEntities int) *ReferenceHost {
	tb.Helper()

	h := &ReferenceHost{
		World:   world.New(),
		Models:  world.NewModelCatalog(),
		Ground:  geo.NewEngine(),
		Defs:    data.NewRegistry(),
		Images:  imagemap.NewManager(tb.TempDir()),
		Quality: 1,
	}
	h.Shapes = world.NewShapes(h.Models)
	h.Spawner = spawn.NewManager(h.World, h.Models, h.Shapes, h.Defs, maxEntities)
	h.Ground.LoadFlat(geom.Vec3{-4096, -4096, 0}, geo.DefaultCellSize, 256, 256)

	for _, name := range []string{seed.DistributionClass, seed.InhibitorClass, seed.DummyClass, seed.FuncStatic} {
		h.Defs.Register(&data.EntityDef{Name: name})
	}
	h.Models.RegisterModel(RockModel, geom.BoundsFromSize(geom.Vec3{8, 8, 8}), 16)
	h.Define("atdm:rock", "", "model", RockModel)
	return h
}

// Define registers a definition from "key value" pairs.
func (h *ReferenceHost) Define(name, spawnClass string, pairs ...string) {
	args := spawnargs.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		args.Set(pairs[i], pairs[i+1])
	}
	h.Defs.Register(&data.EntityDef{Name: name, SpawnClass: spawnClass, Args: args})
}

// Host returns the services as a distribution consumes them.
func (h *ReferenceHost) Host() seed.Host {
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

// Template builds the template source of an entity of classname, inheriting its
// definition like map loading does.
func (h *ReferenceHost) Template(name, classname string, pairs ...string) seed.TemplateSource {
	args := spawnargs.New()
	args.Set("classname", classname)
	args.Set("name", name)
	for i := 0; i+1 < len(pairs); i += 2 {
		args.Set(pairs[i], pairs[i+1])
	}
	if def, ok := h.Defs.Lookup(classname); ok {
		args.Inherit(def.Args)
	}

	src := seed.TemplateSource{Name: name, Args: args, Axis: geom.Identity()}
	if m, ok := h.Models.Find(args.GetString("model", "")); ok {
		src.Bounds = h.Models.Bounds(m)
	}
	return src
}
