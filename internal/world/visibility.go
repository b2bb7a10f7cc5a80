package world

import (
	"sync"
	"time"

	"github.com/udisondev/seed/internal/geom"
)

// Viewer is the point distances and visibility are measured from.
type Viewer struct {
	mu     sync.RWMutex
	origin geom.Vec3
}

// Origin returns the viewer position.
func (v *Viewer) Origin() geom.Vec3 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.origin
}

// SetOrigin moves the viewer.
func (v *Viewer) SetOrigin(origin geom.Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.origin = origin
}

// pvsCache is the set of areas potentially visible from one region.
type pvsCache struct {
	rx, ry    int32
	areas     map[int]struct{}
	createdAt time.Time
}

func (c *pvsCache) isStale(maxAge time.Duration) bool {
	return time.Since(c.createdAt) > maxAge
}

func (c *pvsCache) isValidForRegion(rx, ry int32) bool {
	return c.rx == rx && c.ry == ry
}

// Areas returns the ids of every region b touches, in grid order.
func (w *World) Areas(b geom.Bounds) []int {
	minX, minY := CoordToRegionIndex(b.Min.X(), b.Min.Y())
	maxX, maxY := CoordToRegionIndex(b.Max.X(), b.Max.Y())

	var out []int
	for rx := max(minX, 0); rx <= min(maxX, Regions-1); rx++ {
		for ry := max(minY, 0); ry <= min(maxY, Regions-1); ry++ {
			out = append(out, RegionID(rx, ry))
		}
	}
	return out
}

// InCurrentPVS reports whether any of areas is potentially visible from the
// viewer: the 3×3 window of regions around the viewer's region.
func (w *World) InCurrentPVS(areas []int) bool {
	pvs := w.currentPVS(defaultPVSMaxAge)
	for _, a := range areas {
		if _, ok := pvs.areas[a]; ok {
			return true
		}
	}
	return false
}

// currentPVS returns the cached PVS of the viewer, recomputing it when the viewer
// changed region or the cache is older than maxAge.
func (w *World) currentPVS(maxAge time.Duration) *pvsCache {
	origin := w.viewer.Origin()
	rx, ry := CoordToRegionIndex(origin.X(), origin.Y())
	if c := w.pvs.Load(); c != nil && !c.isStale(maxAge) && c.isValidForRegion(rx, ry) {
		return c
	}
	return w.rebuildPVS(rx, ry)
}

func (w *World) rebuildPVS(rx, ry int32) *pvsCache {
	c := &pvsCache{rx: rx, ry: ry, areas: make(map[int]struct{}, 9), createdAt: time.Now()}
	if region := w.GetRegionByIndex(rx, ry); region != nil {
		for _, r := range region.SurroundingRegions() {
			c.areas[r.ID()] = struct{}{}
		}
	}
	w.pvs.Store(c)
	return c
}

// ForEachVisibleObject iterates over the objects in the 3×3 window around
// (x, y) until fn returns false.
func (w *World) ForEachVisibleObject(x, y float64, fn func(*Object) bool) {
	region := w.GetRegion(x, y)
	if region == nil {
		return
	}

	for _, r := range region.SurroundingRegions() {
		for _, obj := range r.ObjectsSnapshot() {
			if !fn(obj) {
				return
			}
		}
	}
}

// CountVisibleObjects counts objects visible from (x, y).
func (w *World) CountVisibleObjects(x, y float64) int {
	count := 0
	w.ForEachVisibleObject(x, y, func(*Object) bool {
		count++
		return true
	})
	return count
}
