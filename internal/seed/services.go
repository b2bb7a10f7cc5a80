package seed

import (
	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

// ModelService loads, duplicates and frees visuals.
type ModelService interface {
	Find(name string) (model.ModelHandle, bool)
	Duplicate(h model.ModelHandle, name string, scale geom.Vec3) (model.ModelHandle, error)
	// MaxPartCount is the number of copies a composite built from h may hold.
	MaxPartCount(h model.ModelHandle) int
	Bounds(h model.ModelHandle) geom.Bounds
	Free(h model.ModelHandle)
}

// CollisionService loads and clones collision shapes.
type CollisionService interface {
	Load(modelName string) (model.ShapeHandle, bool)
	Clone(s model.ShapeHandle) model.ShapeHandle
	Free(s model.ShapeHandle)
}

// GroundProbeService traces downward against world geometry.
type GroundProbeService interface {
	TracePoint(start, end geom.Vec3) model.Trace
	TraceBounds(start, end geom.Vec3, b geom.Bounds) model.Trace
}

// VisibilityService answers visibility region queries.
type VisibilityService interface {
	Areas(b geom.Bounds) []int
	InCurrentPVS(areas []int) bool
}

// SpawnService creates and destroys live objects.
type SpawnService interface {
	Spawn(args *spawnargs.Dict) (model.EntityID, error)
	// Remove destroys the object at the end of the current tick.
	Remove(id model.EntityID)
	Transform(id model.EntityID) (geom.Vec3, geom.Mat3, bool)
	SetAxis(id model.EntityID, axis geom.Mat3)
	SetModel(id model.EntityID, h model.ModelHandle, clip model.ShapeHandle)
	AttachComposite(id model.EntityID, c *model.Composite) error
	SetVelocity(id model.EntityID, v geom.Vec3)
	FindByClass(classname string) []model.LiveObject
	NumEntities() int
	MaxEntities() int
}

// Definitions resolves entity definitions by name.
type Definitions interface {
	Lookup(name string) (*data.EntityDef, bool)
}

// ImageSource loads density maps.
type ImageSource interface {
	Load(name string) (imagemap.ID, error)
	Map(id imagemap.ID) (*imagemap.Map, bool)
}

// Viewer reports the position distances are measured from.
type Viewer interface {
	Origin() geom.Vec3
}

// Quality reports the external level of detail bias.
type Quality interface {
	LODBias() float64
}

// Host bundles every capability a distribution consumes.
type Host struct {
	Models     ModelService
	Collision  CollisionService
	Ground     GroundProbeService
	Visibility VisibilityService
	Spawner    SpawnService
	Defs       Definitions
	Images     ImageSource
	Viewer     Viewer
	Quality    Quality
}

// FixedQuality is a constant LOD bias.
type FixedQuality float64

// LODBias implements Quality.
func (q FixedQuality) LODBias() float64 { return float64(q) }
