package geom

import "math"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// BoundsFromSize returns bounds centred on the origin in X/Y with Z from 0 to size.z.
func BoundsFromSize(size Vec3) Bounds {
	return Bounds{
		Min: Vec3{-size.X() / 2, -size.Y() / 2, 0},
		Max: Vec3{size.X() / 2, size.Y() / 2, size.Z()},
	}
}

// CenteredBounds returns bounds centred on the origin on all three axes.
func CenteredBounds(size Vec3) Bounds {
	half := size.Mul(0.5)
	return Bounds{Min: half.Mul(-1), Max: half}
}

// Size returns the extent of the bounds.
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the middle of the bounds.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Translate moves the bounds by d.
func (b Bounds) Translate(d Vec3) Bounds {
	return Bounds{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Expand grows the bounds by d on every side.
func (b Bounds) Expand(d float64) Bounds {
	e := Vec3{d, d, d}
	return Bounds{Min: b.Min.Sub(e), Max: b.Max.Add(e)}
}

// Intersects reports whether the bounds overlap.
func (b Bounds) Intersects(o Bounds) bool {
	for i := range 3 {
		if o.Max[i] < b.Min[i] || o.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Contains reports whether p lies inside the bounds.
func (b Bounds) Contains(p Vec3) bool {
	for i := range 3 {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// FromTransformed returns the axis-aligned bounds of b rotated by axis and moved to origin.
func FromTransformed(b Bounds, origin Vec3, axis Mat3) Bounds {
	center := b.Center()
	extents := b.Max.Sub(center)

	rotated := axis.Mul3x1(center)
	var r Vec3
	for i := range 3 {
		row := axis.Row(i)
		r[i] = math.Abs(extents[0]*row[0]) + math.Abs(extents[1]*row[1]) + math.Abs(extents[2]*row[2])
	}
	c := origin.Add(rotated)
	return Bounds{Min: c.Sub(r), Max: c.Add(r)}
}
