package spawn

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
	"github.com/udisondev/seed/internal/world"
)

var (
	// ErrEntityLimit is returned when the world holds MaxEntities objects.
	ErrEntityLimit = errors.New("entity limit reached")
	// ErrUnknownDefinition is returned for a classname with no entity definition.
	ErrUnknownDefinition = errors.New("unknown entity definition")
)

// DefaultMaxEntities is the object ceiling of a manager created without one.
const DefaultMaxEntities = 4096

// Definitions resolves entity definitions by classname.
type Definitions interface {
	Lookup(name string) (*data.EntityDef, bool)
}

// owned is what an object frees when it is destroyed.
type owned struct {
	model model.ModelHandle
	clip  model.ShapeHandle
}

// Manager spawns and destroys the live objects of a world.
type Manager struct {
	world   *world.World
	models  *world.ModelCatalog
	shapes  *world.Shapes
	defs    Definitions
	limit   int
	removal *removalQueue

	mu    sync.Mutex
	owned map[model.EntityID]owned

	count atomic.Int32 // live objects spawned through this manager
}

// NewManager creates a spawn manager placing objects into w.
func NewManager(w *world.World, models *world.ModelCatalog, shapes *world.Shapes, defs Definitions, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultMaxEntities
	}
	return &Manager{
		world:   w,
		models:  models,
		shapes:  shapes,
		defs:    defs,
		limit:   limit,
		removal: newRemovalQueue(),
		owned:   make(map[model.EntityID]owned),
	}
}

// Spawn creates an object from args. classname must name a definition; origin,
// model, skin, _color and angles are applied when present.
func (m *Manager) Spawn(args *spawnargs.Dict) (model.EntityID, error) {
	classname := args.GetString("classname", "")
	if _, ok := m.defs.Lookup(classname); !ok {
		return 0, fmt.Errorf("spawning %q: %w", classname, ErrUnknownDefinition)
	}
	if int(m.count.Load()) >= m.limit {
		return 0, fmt.Errorf("spawning %q: %w (%d)", classname, ErrEntityLimit, m.limit)
	}

	id := m.world.NextID()
	obj := world.NewObject(id, classname, args.GetString("name", ""), args.GetVector("origin", geom.Vec3{}))
	if args.Has("angles") {
		obj.SetAxis(args.GetAngles("angles", geom.Angles{}).ToMat3())
	}
	if name := args.GetString("model", ""); name != "" {
		if h, ok := m.models.Find(name); ok {
			obj.SetModel(name, h, 0)
		}
	}
	if skin := args.GetString("skin", ""); skin != "" {
		obj.SetSkin(skin)
	}
	if args.Has("_color") {
		obj.SetColor(args.GetVector("_color", geom.Vec3{1, 1, 1}))
	}

	if err := m.world.AddObject(obj); err != nil {
		return 0, fmt.Errorf("spawning %q: %w", classname, err)
	}
	m.count.Add(1)

	slog.Debug("object spawned", "id", id, "classname", classname, "origin", obj.Origin())
	return id, nil
}

// Remove schedules the object for destruction at the next Flush.
func (m *Manager) Remove(id model.EntityID) {
	m.removal.push(id)
}

// Flush destroys every object queued by Remove and frees what it owned.
func (m *Manager) Flush() {
	ids := m.removal.drain()
	removed := 0
	for _, id := range ids {
		if _, ok := m.world.RemoveObject(id); !ok {
			continue
		}
		m.count.Add(-1)
		m.release(id)
		removed++
	}
	if removed > 0 {
		slog.Debug("objects removed", "count", removed)
	}
}

// Pending returns the number of objects waiting for Flush.
func (m *Manager) Pending() int {
	return m.removal.len()
}

// Transform returns the origin and axis of a live object.
func (m *Manager) Transform(id model.EntityID) (geom.Vec3, geom.Mat3, bool) {
	obj, ok := m.world.GetObject(id)
	if !ok {
		return geom.Vec3{}, geom.Mat3{}, false
	}
	return obj.Origin(), obj.Axis(), true
}

// SetAxis changes the orientation of a live object.
func (m *Manager) SetAxis(id model.EntityID, axis geom.Mat3) {
	if obj, ok := m.world.GetObject(id); ok {
		obj.SetAxis(axis)
	}
}

// SetModel replaces the visual and collision of a live object. The object takes
// ownership of both handles and frees them when it is destroyed.
func (m *Manager) SetModel(id model.EntityID, h model.ModelHandle, clip model.ShapeHandle) {
	obj, ok := m.world.GetObject(id)
	if !ok {
		return
	}
	name, _ := m.models.Name(h)
	obj.SetModel(name, h, clip)

	m.mu.Lock()
	prev, had := m.owned[id]
	m.owned[id] = owned{model: h, clip: clip}
	m.mu.Unlock()
	if had {
		m.free(prev)
	}
}

// AttachComposite makes a live object render and collide as c. The composite
// stays owned by its creator.
func (m *Manager) AttachComposite(id model.EntityID, c *model.Composite) error {
	obj, ok := m.world.GetObject(id)
	if !ok {
		return fmt.Errorf("attaching composite to %d: not in world", id)
	}
	obj.AttachComposite(c)
	m.release(id)
	return nil
}

// SetVelocity changes the linear velocity of a live object.
func (m *Manager) SetVelocity(id model.EntityID, v geom.Vec3) {
	if obj, ok := m.world.GetObject(id); ok {
		obj.SetVelocity(v)
	}
}

// FindByClass returns every live object of classname ordered by id.
func (m *Manager) FindByClass(classname string) []model.LiveObject {
	var out []model.LiveObject
	m.world.ForEachObject(func(obj *world.Object) bool {
		if obj.Classname() == classname {
			out = append(out, obj.Live())
		}
		return true
	})
	slices.SortFunc(out, func(a, b model.LiveObject) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// NumEntities returns the number of live objects spawned through m.
func (m *Manager) NumEntities() int {
	return int(m.count.Load())
}

// MaxEntities returns the object ceiling.
func (m *Manager) MaxEntities() int {
	return m.limit
}

func (m *Manager) release(id model.EntityID) {
	m.mu.Lock()
	o, ok := m.owned[id]
	delete(m.owned, id)
	m.mu.Unlock()
	if ok {
		m.free(o)
	}
}

func (m *Manager) free(o owned) {
	if o.model != 0 {
		m.models.Free(o.model)
	}
	if o.clip != 0 {
		m.shapes.Free(o.clip)
	}
}
