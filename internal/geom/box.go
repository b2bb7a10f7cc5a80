package geom

import "math"

// Box is an oriented bounding box. Extents are half sizes along the box axis.
type Box struct {
	Center  Vec3 `yaml:"center"`
	Extents Vec3 `yaml:"extents"`
	Axis    Mat3 `yaml:"axis"`
}

// NewBox builds a box of the given full size centred on center.
func NewBox(center, size Vec3, axis Mat3) Box {
	return Box{Center: center, Extents: size.Mul(0.5), Axis: axis}
}

// BoxFromBounds builds a box from bounds placed at origin with the given axis.
func BoxFromBounds(b Bounds, origin Vec3, axis Mat3) Box {
	return Box{
		Center:  origin.Add(axis.Mul3x1(b.Center())),
		Extents: b.Size().Mul(0.5),
		Axis:    axis,
	}
}

// Expand grows the box by d along each of its axes.
func (b Box) Expand(d float64) Box {
	b.Extents = b.Extents.Add(Vec3{d, d, d})
	return b
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Vec3) bool {
	local := p.Sub(b.Center)
	for i := range 3 {
		if math.Abs(local.Dot(b.Axis.Col(i))) > b.Extents[i] {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounds enclosing the box.
func (b Box) Bounds() Bounds {
	var r Vec3
	for i := range 3 {
		row := b.Axis.Row(i)
		r[i] = math.Abs(b.Extents[0]*row[0]) + math.Abs(b.Extents[1]*row[1]) + math.Abs(b.Extents[2]*row[2])
	}
	return Bounds{Min: b.Center.Sub(r), Max: b.Center.Add(r)}
}

// Intersects tests two oriented boxes with the separating axis theorem.
func (b Box) Intersects(o Box) bool {
	const eps = 1e-6

	var rot, absRot [3][3]float64
	for i := range 3 {
		for j := range 3 {
			rot[i][j] = b.Axis.Col(i).Dot(o.Axis.Col(j))
			absRot[i][j] = math.Abs(rot[i][j]) + eps
		}
	}

	d := o.Center.Sub(b.Center)
	t := Vec3{d.Dot(b.Axis.Col(0)), d.Dot(b.Axis.Col(1)), d.Dot(b.Axis.Col(2))}

	// face axes of b
	for i := range 3 {
		ra := b.Extents[i]
		rb := o.Extents[0]*absRot[i][0] + o.Extents[1]*absRot[i][1] + o.Extents[2]*absRot[i][2]
		if math.Abs(t[i]) > ra+rb {
			return false
		}
	}

	// face axes of o
	for j := range 3 {
		ra := b.Extents[0]*absRot[0][j] + b.Extents[1]*absRot[1][j] + b.Extents[2]*absRot[2][j]
		rb := o.Extents[j]
		if math.Abs(t[0]*rot[0][j]+t[1]*rot[1][j]+t[2]*rot[2][j]) > ra+rb {
			return false
		}
	}

	// edge cross products
	for i := range 3 {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := range 3 {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := b.Extents[i1]*absRot[i2][j] + b.Extents[i2]*absRot[i1][j]
			rb := o.Extents[j1]*absRot[i][j2] + o.Extents[j2]*absRot[i][j1]
			if math.Abs(t[i2]*rot[i1][j]-t[i1]*rot[i2][j]) > ra+rb {
				return false
			}
		}
	}
	return true
}
