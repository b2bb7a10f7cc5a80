package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/udisondev/seed/internal/config"
	"github.com/udisondev/seed/internal/geom"
)

// SceneDefs declares the seed classes, an atdm:rock using RockModel and a plain
// atdm:lamp.
const SceneDefs = `
[[def]]
name = "atdm:seed"

[[def]]
name = "atdm:no_seed"

[[def]]
name = "atdm:seed_dummy_static"

[[def]]
name = "func_static"

[[def]]
name = "atdm:rock"
[def.args]
model = "models/rock.lwo"

[[def]]
name = "atdm:lamp"
`

// SceneMap holds one distribution, seed_yard, seeding rocks and an inline
// boulder model, next to a static lamp.
const SceneMap = `
name: yard
entities:
  - name: seed_yard
    classname: atdm:seed
    targets: [rock_tpl, boulder]
    args:
      origin: "0 0 0"
      bounds_min: "-128 -128 0"
      bounds_max: "128 128 64"
      randseed: "3"
      max_entities: "12"
      combine: "0"
  - name: rock_tpl
    classname: atdm:rock
    args:
      seed_floor: "1"
  - name: boulder
    classname: func_static
    args:
      model: boulder
      bounds_min: "-16 -16 0"
      bounds_max: "16 16 24"
  - name: lamp_1
    classname: atdm:lamp
    args:
      origin: "10 20 0"
`

// SceneConfig writes SceneDefs and SceneMap into a temp dir and returns a server
// config pointing at them, with a LevelDB store in the same dir.
func SceneConfig(tb testing.TB) config.Server {
	tb.Helper()
	dir := tb.TempDir()

	cfg := config.DefaultServer()
	cfg.DefsPath = filepath.Join(dir, "entities.toml")
	cfg.MapPath = filepath.Join(dir, "yard.yaml")
	cfg.ImageDir = dir
	cfg.Storage = config.StorageConfig{Driver: config.StorageLevelDB, Path: filepath.Join(dir, "snapshots")}
	cfg.Host.Models = []config.ModelEntry{
		{Name: RockModel, Min: geom.Vec3{-4, -4, 0}, Max: geom.Vec3{4, 4, 8}},
	}

	if err := os.WriteFile(cfg.DefsPath, []byte(SceneDefs), 0o644); err != nil {
		tb.Fatalf("writing defs: %v", err)
	}
	if err := os.WriteFile(cfg.MapPath, []byte(SceneMap), 0o644); err != nil {
		tb.Fatalf("writing map: %v", err)
	}
	return cfg
}
