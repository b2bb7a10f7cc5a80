package geo

import (
	"math"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// TracePoint traces straight down from start to end.z at start's X/Y. The trace
// misses when there is no terrain under start or the ground lies below end.
func (e *Engine) TracePoint(start, end geom.Vec3) model.Trace {
	return e.trace(start, end, geom.Bounds{})
}

// TraceBounds traces a box with local bounds b down from start. The box stops
// when its bottom touches the highest ground under its footprint; EndPos is the
// box origin at that point.
func (e *Engine) TraceBounds(start, end geom.Vec3, b geom.Bounds) model.Trace {
	return e.trace(start, end, b)
}

func (e *Engine) trace(start, end geom.Vec3, b geom.Bounds) model.Trace {
	miss := model.Trace{Fraction: 1, EndPos: end, EndAxis: geom.Identity()}

	t := e.terrain.Load()
	if t == nil || start.Z() <= end.Z() {
		return miss
	}

	ground, ok := t.highestUnder(start, b)
	if !ok {
		return miss
	}
	stop := ground - b.Min.Z()
	if stop < end.Z() {
		return miss
	}

	fraction := 0.0
	if stop < start.Z() {
		fraction = (start.Z() - stop) / (start.Z() - end.Z())
	} else {
		stop = start.Z()
	}

	e.mu.RLock()
	surface := t.surfaces[t.materials[t.index(t.CellX(start.X()), t.CellY(start.Y()))]]
	e.mu.RUnlock()

	return model.Trace{
		Fraction: fraction,
		EndPos:   geom.Vec3{start.X(), start.Y(), stop},
		EndAxis:  t.slopeAxis(start.X(), start.Y()),
		Surface:  surface,
	}
}

// highestUnder returns the highest ground height under the X/Y footprint of b
// placed at origin. The centre of the footprint must lie on the terrain.
func (t *terrain) highestUnder(origin geom.Vec3, b geom.Bounds) (float64, bool) {
	cx, cy := t.CellX(origin.X()), t.CellY(origin.Y())
	if !t.valid(cx, cy) {
		return 0, false
	}

	minX := max(t.CellX(origin.X()+b.Min.X()), 0)
	maxX := min(t.CellX(origin.X()+b.Max.X()), t.width-1)
	minY := max(t.CellY(origin.Y()+b.Min.Y()), 0)
	maxY := min(t.CellY(origin.Y()+b.Max.Y()), t.height-1)

	h := math.Inf(-1)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			h = max(h, t.heights[t.index(x, y)])
		}
	}
	return h, true
}

// slopeAxis returns an axis tilted to follow the terrain around (x, y), using
// central differences between neighbouring cells.
func (t *terrain) slopeAxis(x, y float64) geom.Mat3 {
	cx, cy := t.CellX(x), t.CellY(y)
	at := func(x, y int) float64 {
		x = min(max(x, 0), t.width-1)
		y = min(max(y, 0), t.height-1)
		return t.heights[t.index(x, y)]
	}

	dx := (at(cx+1, cy) - at(cx-1, cy)) / (2 * t.cellSize)
	dy := (at(cx, cy+1) - at(cx, cy-1)) / (2 * t.cellSize)
	if dx == 0 && dy == 0 {
		return geom.Identity()
	}

	clamp := func(deg float64) float64 {
		return min(max(deg, -maxSlopeDegrees), maxSlopeDegrees)
	}
	// rising towards +X pitches the nose up, rising towards +Y rolls to the left
	return geom.Angles{
		Pitch: clamp(-math.Atan(dx) * 180 / math.Pi),
		Roll:  clamp(math.Atan(dy) * 180 / math.Pi),
	}.ToMat3()
}
