package model

import "github.com/udisondev/seed/internal/geom"

// Kind selects how a live object is created for an instance.
type Kind int

const (
	KindSimple Kind = iota
	KindComposite
	KindPhysical
)

func (k Kind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindPhysical:
		return "physical"
	}
	return "simple"
}

// Flags describe the scheduling state of an instance.
type Flags uint8

const (
	FlagExists Flags = 1 << iota
	FlagSpawned
	FlagHidden
	FlagComposite
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Instance is one placed object.
type Instance struct {
	Class  int         `yaml:"class"`
	Kind   Kind        `yaml:"kind"`
	Origin geom.Vec3   `yaml:"origin"`
	Angles geom.Angles `yaml:"angles"`
	Color  uint32      `yaml:"color"`
	Scale  geom.Vec3   `yaml:"scale"`
	Skin   int         `yaml:"skin"`
	Entity EntityID    `yaml:"entity,omitempty"`
	Flags  Flags       `yaml:"flags"`
	// Merged marks an instance folded into a composite; it is compacted away
	// at the end of the combine pass.
	Merged bool `yaml:"-"`
}

// Exists reports whether the instance currently has a live object.
func (i *Instance) Exists() bool { return i.Flags&FlagExists != 0 }

// MarkSpawned records a live object for the instance.
func (i *Instance) MarkSpawned(id EntityID) {
	i.Entity = id
	i.Flags = FlagSpawned | FlagExists | (i.Flags & FlagComposite)
}

// MarkHidden records that the live object is gone.
func (i *Instance) MarkHidden() {
	i.Entity = 0
	i.Flags = (i.Flags &^ FlagExists) | FlagHidden
}

// Axis returns the orientation matrix of the instance.
func (i *Instance) Axis() geom.Mat3 {
	return i.Angles.ToMat3()
}
