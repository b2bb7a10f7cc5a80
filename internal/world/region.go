package world

import (
	"sync"
	"sync/atomic"

	"github.com/udisondev/seed/internal/model"
)

// Region is one cell of the visibility grid (2048×2048 map units).
type Region struct {
	rx, ry int32

	mu      sync.RWMutex
	objects sync.Map // model.EntityID → *Object

	surroundingRegions []*Region // 3×3 window including the region itself

	snapshotCache atomic.Value // []*Object, immutable after rebuild
	snapshotDirty atomic.Bool

	version atomic.Uint64 // incremented on Add/Remove
}

// NewRegion creates a new region
func NewRegion(rx, ry int32) *Region {
	return &Region{rx: rx, ry: ry}
}

// RX returns region X index
func (r *Region) RX() int32 { return r.rx }

// RY returns region Y index
func (r *Region) RY() int32 { return r.ry }

// ID returns the area number of the region.
func (r *Region) ID() int { return RegionID(r.rx, r.ry) }

// Version returns the number of membership changes so far.
func (r *Region) Version() uint64 {
	return r.version.Load()
}

// AddObject adds obj to the region.
func (r *Region) AddObject(obj *Object) {
	r.objects.Store(obj.ID(), obj)
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// RemoveObject removes the object with the given id.
func (r *Region) RemoveObject(id model.EntityID) {
	r.objects.Delete(id)
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// ForEachObject iterates over the objects of the region until fn returns false.
func (r *Region) ForEachObject(fn func(*Object) bool) {
	r.objects.Range(func(_, value any) bool {
		return fn(value.(*Object))
	})
}

// SetSurroundingRegions sets the 3×3 window. Called once while building the grid.
func (r *Region) SetSurroundingRegions(regions []*Region) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surroundingRegions = regions
}

// SurroundingRegions returns the 3×3 window. The slice must not be modified.
func (r *Region) SurroundingRegions() []*Region {
	return r.surroundingRegions
}

// ObjectsSnapshot returns the cached object list, rebuilding it when membership
// changed. The slice must not be modified.
func (r *Region) ObjectsSnapshot() []*Object {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return cache.([]*Object)
		}
	}
	return r.rebuildSnapshot()
}

// Clear removes every object.
func (r *Region) Clear() {
	r.objects.Range(func(key, _ any) bool {
		r.objects.Delete(key)
		return true
	})
	r.version.Add(1)
	r.snapshotDirty.Store(true)
	r.snapshotCache.Store(([]*Object)(nil))
}

func (r *Region) rebuildSnapshot() []*Object {
	objects := make([]*Object, 0, 64)
	r.objects.Range(func(_, value any) bool {
		objects = append(objects, value.(*Object))
		return true
	})

	r.snapshotCache.Store(objects)
	r.snapshotDirty.Store(false)
	return objects
}
