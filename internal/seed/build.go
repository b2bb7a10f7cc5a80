package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/spawnargs"
)

// BuildFromMap creates a distribution for every seed entity of m. Targets of a
// seed are resolved into template sources; missing targets are skipped with a
// warning.
func BuildFromMap(m *data.Map, host Host, now time.Time) ([]*Distribution, error) {
	var (
		out  []*Distribution
		errs []error
	)
	for _, e := range m.Entities {
		if e.Classname != DistributionClass {
			continue
		}
		args := entityArgs(e, host.Defs)

		src := Source{
			Args:   args,
			Origin: args.GetVector("origin", geom.Vec3{}),
			Axis:   args.GetAngles("angles", geom.Angles{}).ToMat3(),
			Bounds: entityBounds(args, host),
		}
		for _, name := range e.Targets {
			target, ok := m.Entity(name)
			if !ok {
				slog.Warn("seed target not found", "seed", e.Name, "target", name)
				continue
			}
			src.Targets = append(src.Targets, templateSource(target, host))
		}
		if len(src.Targets) == 0 && len(args.MatchPrefix("spawn_class")) == 0 {
			errs = append(errs, fmt.Errorf("seed %s: %w", e.Name, ErrNoClasses))
			continue
		}

		out = append(out, New(e.Name, src, host, now))
	}

	slog.Info("distributions built", "map", m.Name, "count", len(out))
	return out, errors.Join(errs...)
}

// SpawnStatics spawns every map entity that is neither a seed, an inhibitor nor
// the target of a seed. It returns the number of objects created.
func SpawnStatics(m *data.Map, host Host) (int, error) {
	consumed := make(map[string]struct{})
	for _, e := range m.Entities {
		if e.Classname != DistributionClass {
			continue
		}
		for _, t := range e.Targets {
			consumed[t] = struct{}{}
		}
	}

	n := 0
	var errs []error
	for _, e := range m.Entities {
		if _, ok := consumed[e.Name]; ok || e.Classname == DistributionClass || e.Classname == InhibitorClass {
			continue
		}
		args := entityArgs(e, host.Defs)
		id, err := host.Spawner.Spawn(args)
		if err != nil {
			errs = append(errs, fmt.Errorf("spawning %s: %w", e.Name, err))
			continue
		}
		host.Spawner.SetAxis(id, args.GetAngles("angles", geom.Angles{}).ToMat3())
		n++
	}
	return n, errors.Join(errs...)
}

func entityArgs(e data.MapEntity, defs Definitions) *spawnargs.Dict {
	args := e.Spawnargs()
	if defs == nil {
		return args
	}
	if def, ok := defs.Lookup(e.Classname); ok {
		args.Inherit(def.Args)
	}
	return args
}

// entityBounds returns the bounds_min/bounds_max of an entity, else the bounds of
// its model.
func entityBounds(args *spawnargs.Dict, host Host) geom.Bounds {
	if args.Has("bounds_min") || args.Has("bounds_max") {
		return geom.Bounds{
			Min: args.GetVector("bounds_min", geom.Vec3{}),
			Max: args.GetVector("bounds_max", geom.Vec3{}),
		}
	}
	if host.Models != nil {
		if h, ok := host.Models.Find(args.GetString("model", "")); ok {
			return host.Models.Bounds(h)
		}
	}
	return geom.Bounds{}
}

func templateSource(e data.MapEntity, host Host) TemplateSource {
	args := entityArgs(e, host.Defs)
	src := TemplateSource{
		Name:   e.Name,
		Args:   args,
		Bounds: entityBounds(args, host),
		Axis:   args.GetAngles("angles", geom.Angles{}).ToMat3(),
	}
	modelName := args.GetString("model", "")
	if host.Models != nil {
		if h, ok := host.Models.Find(modelName); ok {
			src.Model = h
		}
	}
	// inline geometry carries its own collision shape
	if modelName == e.Name && host.Collision != nil {
		if s, ok := host.Collision.Load(modelName); ok {
			src.Clip = s
		}
	}
	return src
}
