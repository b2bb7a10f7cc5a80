package world

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// World is the reference host space: a 2D grid of visibility regions, the table of
// live objects and the viewer.
type World struct {
	regions [][]*Region // [Regions][Regions]
	objects sync.Map    // model.EntityID → *Object
	ids     *IDGenerator
	viewer  Viewer
	pvs     atomic.Pointer[pvsCache]
}

// New creates an empty world with the viewer at the map origin.
func New() *World {
	w := &World{ids: NewIDGenerator()}
	w.initialize()
	return w
}

// initialize creates the region grid and sets up surrounding regions
func (w *World) initialize() {
	w.regions = make([][]*Region, Regions)
	for rx := range Regions {
		w.regions[rx] = make([]*Region, Regions)
		for ry := range Regions {
			w.regions[rx][ry] = NewRegion(int32(rx), int32(ry))
		}
	}

	for rx := range Regions {
		for ry := range Regions {
			w.regions[rx][ry].SetSurroundingRegions(w.getSurroundingRegions(int32(rx), int32(ry)))
		}
	}
}

// getSurroundingRegions returns the valid regions of the 3×3 window around (rx, ry).
func (w *World) getSurroundingRegions(rx, ry int32) []*Region {
	surrounding := make([]*Region, 0, 9)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			if IsValidRegionIndex(rx+dx, ry+dy) {
				surrounding = append(surrounding, w.regions[rx+dx][ry+dy])
			}
		}
	}
	return surrounding
}

// GetRegion returns the region containing (x, y), or nil outside the world.
func (w *World) GetRegion(x, y float64) *Region {
	if !inWorld(x) || !inWorld(y) {
		return nil
	}
	return w.GetRegionByIndex(CoordToRegionIndex(x, y))
}

// GetRegionByIndex returns region at region index (rx, ry)
// Returns nil if index is out of bounds
func (w *World) GetRegionByIndex(rx, ry int32) *Region {
	if !IsValidRegionIndex(rx, ry) {
		return nil
	}
	return w.regions[rx][ry]
}

// NextID allocates an entity id.
func (w *World) NextID() model.EntityID {
	return w.ids.Next()
}

// AddObject adds obj to the world and its region.
func (w *World) AddObject(obj *Object) error {
	origin := obj.Origin()
	region := w.GetRegion(origin.X(), origin.Y())
	if region == nil {
		return fmt.Errorf("invalid coordinates for object %d: (%g, %g)", obj.ID(), origin.X(), origin.Y())
	}

	w.objects.Store(obj.ID(), obj)
	region.AddObject(obj)
	return nil
}

// RemoveObject removes the object from the world and its region.
func (w *World) RemoveObject(id model.EntityID) (*Object, bool) {
	value, ok := w.objects.LoadAndDelete(id)
	if !ok {
		return nil, false
	}

	obj := value.(*Object)
	origin := obj.Origin()
	if region := w.GetRegion(origin.X(), origin.Y()); region != nil {
		region.RemoveObject(id)
	}
	return obj, true
}

// MoveObject changes the position of an object, moving it between regions.
func (w *World) MoveObject(id model.EntityID, origin geom.Vec3) error {
	obj, ok := w.GetObject(id)
	if !ok {
		return fmt.Errorf("moving object %d: not in world", id)
	}
	to := w.GetRegion(origin.X(), origin.Y())
	if to == nil {
		return fmt.Errorf("moving object %d: invalid coordinates (%g, %g)", id, origin.X(), origin.Y())
	}

	old := obj.Origin()
	from := w.GetRegion(old.X(), old.Y())
	obj.setOrigin(origin)
	if from != to {
		if from != nil {
			from.RemoveObject(id)
		}
		to.AddObject(obj)
	}
	return nil
}

// GetObject returns object by ID
func (w *World) GetObject(id model.EntityID) (*Object, bool) {
	value, ok := w.objects.Load(id)
	if !ok {
		return nil, false
	}
	return value.(*Object), true
}

// ForEachObject iterates over every object until fn returns false.
func (w *World) ForEachObject(fn func(*Object) bool) {
	w.objects.Range(func(_, value any) bool {
		return fn(value.(*Object))
	})
}

// RegionCount returns total number of regions
func (w *World) RegionCount() int {
	return Regions * Regions
}

// ObjectCount returns total number of objects in world (O(N))
func (w *World) ObjectCount() int {
	count := 0
	w.objects.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Viewer returns the point of view of the world.
func (w *World) Viewer() *Viewer {
	return &w.viewer
}
