package geo

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/model"
)

// terrain is a loaded heightfield. Heights are stored row by row; materials index
// into surfaces, with 0 meaning no surface information.
type terrain struct {
	origin        geom.Vec3
	cellSize      float64
	width, height int
	heights       []float64
	materials     []uint8
	surfaces      []model.Surface
}

// Engine answers ground probes against a heightfield.
// Thread-safe: the terrain is replaced as a whole on load, materials are guarded.
type Engine struct {
	terrain atomic.Pointer[terrain]
	mu      sync.RWMutex // guards materials and surfaces of the current terrain
}

// NewEngine creates an empty engine. Traces miss until terrain is loaded.
func NewEngine() *Engine {
	return &Engine{}
}

// IsLoaded returns true if a heightfield is loaded.
func (e *Engine) IsLoaded() bool {
	return e.terrain.Load() != nil
}

// LoadHeightmap builds the heightfield from a density image: one pixel per cell,
// black at origin.z and white at origin.z+heightScale. origin is the minimum
// corner of the field.
func (e *Engine) LoadHeightmap(m *imagemap.Map, cellSize, heightScale float64, origin geom.Vec3) error {
	if m == nil || m.Width == 0 || m.Height == 0 {
		return fmt.Errorf("loading heightmap: %w", imagemap.ErrUnreadable)
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	t := newTerrain(origin, cellSize, m.Width, m.Height)
	for i, v := range m.Data {
		t.heights[i] = origin.Z() + float64(v)/255*heightScale
	}
	e.terrain.Store(t)

	slog.Info("heightmap loaded",
		"map", m.Name,
		"width", m.Width,
		"height", m.Height,
		"cellSize", cellSize,
		"heightScale", heightScale)
	return nil
}

// LoadFlat builds a level heightfield of width×height cells at origin.z.
func (e *Engine) LoadFlat(origin geom.Vec3, cellSize float64, width, height int) {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	t := newTerrain(origin, cellSize, width, height)
	for i := range t.heights {
		t.heights[i] = origin.Z()
	}
	e.terrain.Store(t)
}

func newTerrain(origin geom.Vec3, cellSize float64, width, height int) *terrain {
	return &terrain{
		origin:    origin,
		cellSize:  cellSize,
		width:     width,
		height:    height,
		heights:   make([]float64, width*height),
		materials: make([]uint8, width*height),
		surfaces:  []model.Surface{{}},
	}
}

// SetMaterial assigns surface to every cell whose centre lies inside b (X/Y only).
// It returns the number of cells changed.
func (e *Engine) SetMaterial(b geom.Bounds, surface model.Surface) int {
	t := e.terrain.Load()
	if t == nil {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := -1
	for i, s := range t.surfaces {
		if s == surface {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(t.surfaces) > 255 {
			slog.Warn("too many surfaces, ignoring material", "surface", surface.Name())
			return 0
		}
		t.surfaces = append(t.surfaces, surface)
		idx = len(t.surfaces) - 1
	}

	changed := 0
	for cy := max(t.CellY(b.Min.Y()), 0); cy <= min(t.CellY(b.Max.Y()), t.height-1); cy++ {
		for cx := max(t.CellX(b.Min.X()), 0); cx <= min(t.CellX(b.Max.X()), t.width-1); cx++ {
			wx, wy := t.WorldX(cx), t.WorldY(cy)
			if wx < b.Min.X() || wx > b.Max.X() || wy < b.Min.Y() || wy > b.Max.Y() {
				continue
			}
			t.materials[t.index(cx, cy)] = uint8(idx)
			changed++
		}
	}
	return changed
}

// HeightAt returns the ground height under (x, y).
func (e *Engine) HeightAt(x, y float64) (float64, bool) {
	t := e.terrain.Load()
	if t == nil {
		return 0, false
	}
	cx, cy := t.CellX(x), t.CellY(y)
	if !t.valid(cx, cy) {
		return 0, false
	}
	return t.heights[t.index(cx, cy)], true
}

// SurfaceAt returns the surface under (x, y).
func (e *Engine) SurfaceAt(x, y float64) model.Surface {
	t := e.terrain.Load()
	if t == nil {
		return model.Surface{}
	}
	cx, cy := t.CellX(x), t.CellY(y)
	if !t.valid(cx, cy) {
		return model.Surface{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return t.surfaces[t.materials[t.index(cx, cy)]]
}
