package model

import "github.com/udisondev/seed/internal/geom"

// Offset places one member of a composite relative to the composite origin.
type Offset struct {
	Offset geom.Vec3   `yaml:"offset"`
	Angles geom.Angles `yaml:"angles"`
	Color  uint32      `yaml:"color"`
	Scale  geom.Vec3   `yaml:"scale"`
	LOD    int         `yaml:"lod"`
}

// CollisionPart is one shape of a composite collision proxy.
type CollisionPart struct {
	Shape  ShapeHandle `yaml:"-"`
	Model  string      `yaml:"model"`
	Cloned bool        `yaml:"cloned"`
	Origin geom.Vec3   `yaml:"origin"`
	Angles geom.Angles `yaml:"angles"`
	Scale  geom.Vec3   `yaml:"scale"`
}

// CollisionProxy is the multi-part collision object owned by a composite class.
type CollisionProxy struct {
	Origin geom.Vec3       `yaml:"origin"`
	Parts  []CollisionPart `yaml:"parts"`
}

// Composite is what gets attached to a spawned composite object.
type Composite struct {
	Model     string
	Handle    ModelHandle
	LOD       *LODData
	Offsets   []Offset
	Collision *CollisionProxy
}
