package model

import "github.com/udisondev/seed/internal/geom"

// EntityID identifies a live object in the host. Zero means "no object".
type EntityID uint32

// ModelHandle identifies a loaded visual. Zero means "no model".
type ModelHandle uint32

// ShapeHandle identifies a loaded collision shape. Zero means "no shape".
type ShapeHandle uint32

// SurfaceType is the semantic category of a surface material.
type SurfaceType int

const (
	SurfaceNone SurfaceType = iota
	SurfaceMetal
	SurfaceStone
	SurfaceFlesh
	SurfaceWood
	SurfaceCardboard
	SurfaceLiquid
	SurfaceGlass
	SurfacePlastic
	// SurfaceCustom surfaces are identified by their material description.
	SurfaceCustom
)

// Surface describes the material hit by a ground probe.
type Surface struct {
	Type        SurfaceType
	Description string
}

// Name returns the string matched against material probability tables.
// Unknown surfaces yield an empty name.
func (s Surface) Name() string {
	switch s.Type {
	case SurfaceMetal:
		return "metal"
	case SurfaceStone:
		return "stone"
	case SurfaceFlesh:
		return "flesh"
	case SurfaceWood:
		return "wood"
	case SurfaceCardboard:
		return "cardboard"
	case SurfaceLiquid:
		return "liquid"
	case SurfaceGlass:
		return "glass"
	case SurfacePlastic:
		return "plastic"
	case SurfaceCustom:
		return s.Description
	}
	return ""
}

// Trace is the result of a downward ground probe.
// Fraction is 1 when nothing was hit.
type Trace struct {
	Fraction float64
	EndPos   geom.Vec3
	EndAxis  geom.Mat3
	Surface  Surface
}

// Hit reports whether the trace stopped on geometry.
func (t Trace) Hit() bool {
	return t.Fraction < 1
}

// LiveObject is the view of a host object needed to adopt it as an instance.
type LiveObject struct {
	ID        EntityID
	Classname string
	Origin    geom.Vec3
	Axis      geom.Mat3
	Skin      string
}
