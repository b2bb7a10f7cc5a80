package model

import (
	"slices"

	"github.com/udisondev/seed/internal/geom"
)

// Falloff shapes the placement density across a footprint.
type Falloff int

const (
	FalloffNone Falloff = iota
	FalloffCutoff
	FalloffPower
	FalloffRoot
	FalloffLinear
	FalloffFunc
)

var falloffNames = [...]string{"none", "cutoff", "power", "root", "linear", "func"}

func (f Falloff) String() string {
	if f < 0 || int(f) >= len(falloffNames) {
		return "none"
	}
	return falloffNames[f]
}

// UsesDisk reports whether candidates are rejection sampled inside the unit disk.
func (f Falloff) UsesDisk() bool {
	return f >= FalloffCutoff && f <= FalloffLinear
}

// Collide says which instances a class checks for overlap against.
type Collide int

const (
	CollideNone Collide = iota
	CollideStatic
	CollideAtAll
)

// FuncFalloff is p = S * (x*X + y*Y + A) with x, y in [0,1] across the footprint.
type FuncFalloff struct {
	S        float64 `yaml:"s"`
	A        float64 `yaml:"a"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	XSquared bool    `yaml:"x_squared"`
	YSquared bool    `yaml:"y_squared"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
	// Clamp keeps out of range values at the bounds instead of rejecting them.
	Clamp bool `yaml:"clamp"`
}

// ImageDensity references a grayscale density map.
type ImageDensity struct {
	Name    string  `yaml:"name"`
	ID      int     `yaml:"-"`
	Invert  bool    `yaml:"invert"`
	ScaleX  float64 `yaml:"scale_x"`
	ScaleY  float64 `yaml:"scale_y"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

// Identity reports whether the map is sampled without scaling or offset.
func (i *ImageDensity) Identity() bool {
	return i.ScaleX == 1 && i.ScaleY == 1 && i.OffsetX == 0 && i.OffsetY == 0
}

// ZBand restricts the height of placed instances.
type ZBand struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	FadeIn  float64 `yaml:"fade_in"`
	FadeOut float64 `yaml:"fade_out"`
	Invert  bool    `yaml:"invert"`
}

// ZUnbounded is the default magnitude of an unset z-band edge.
const ZUnbounded = 1000000

// DefaultZBand returns a band that accepts every height.
func DefaultZBand() ZBand {
	return ZBand{Min: -ZUnbounded, Max: ZUnbounded}
}

// MaterialProb is the placement probability on surfaces whose name starts with Name.
type MaterialProb struct {
	Name        string  `yaml:"name"`
	Probability float64 `yaml:"probability"`
}

// PlacementClass is the compiled descriptor for one kind of placed object.
type PlacementClass struct {
	Classname string   `yaml:"classname"`
	ModelName string   `yaml:"model"`
	Category  Category `yaml:"category"`

	// Pseudo classes are composites created by merging instances.
	Pseudo bool `yaml:"pseudo,omitempty"`
	// Watch classes adopt existing live objects instead of placing new ones.
	Watch     bool `yaml:"watch,omitempty"`
	Solid     bool `yaml:"solid"`
	NoCombine bool `yaml:"no_combine"`

	Score       int `yaml:"score"`
	MaxEntities int `yaml:"max_entities"`
	NumEntities int `yaml:"num_entities"`
	// Usage counts the instances ever created from this class.
	Usage uint64 `yaml:"usage"`
	Seed  int32  `yaml:"seed"`

	Skins []int `yaml:"skins"`

	Origin    geom.Vec3 `yaml:"origin"`
	Offset    geom.Vec3 `yaml:"offset"`
	Floor     bool      `yaml:"floor"`
	Stack     bool      `yaml:"stack"`
	NoInhibit bool      `yaml:"no_inhibit"`
	Spacing   float64   `yaml:"spacing"`
	Bunching  float64   `yaml:"bunching"`
	Collide   Collide   `yaml:"collide"`

	SinkMin  float64   `yaml:"sink_min"`
	SinkMax  float64   `yaml:"sink_max"`
	ScaleMin geom.Vec3 `yaml:"scale_min"`
	ScaleMax geom.Vec3 `yaml:"scale_max"`
	Size     geom.Vec3 `yaml:"size"`
	AvgSize  float64   `yaml:"avg_size"`

	ColorMin   geom.Vec3 `yaml:"color_min"`
	ColorMax   geom.Vec3 `yaml:"color_max"`
	ImpulseMin geom.Vec3 `yaml:"impulse_min"`
	ImpulseMax geom.Vec3 `yaml:"impulse_max"`

	Z ZBand `yaml:"z"`

	DefaultProb float64        `yaml:"default_prob"`
	Materials   []MaterialProb `yaml:"materials,omitempty"`

	Falloff       Falloff       `yaml:"falloff"`
	FalloffFactor float64       `yaml:"falloff_factor,omitempty"`
	Func          *FuncFalloff  `yaml:"func,omitempty"`
	Image         *ImageDensity `yaml:"image,omitempty"`

	CullDistSq  float64  `yaml:"cull_dist_sq"`
	SpawnDistSq float64  `yaml:"spawn_dist_sq"`
	LOD         *LODData `yaml:"lod,omitempty"`

	// Model is set for inline map geometry and scaled duplicates. ModelRef names it
	// so the handle can be found again after a restore.
	Model    ModelHandle `yaml:"-"`
	ModelRef string      `yaml:"model_ref,omitempty"`
	// Clip is the collision shape copied from inline map geometry, loaded by ModelRef.
	Clip    ShapeHandle `yaml:"-"`
	HasClip bool        `yaml:"has_clip,omitempty"`

	// Offsets and Collision are only set on composite classes.
	Offsets   []Offset        `yaml:"offsets,omitempty"`
	Collision *CollisionProxy `yaml:"collision,omitempty"`
}

// Clone returns a copy of c that shares no slices or pointers with it.
func (c *PlacementClass) Clone() PlacementClass {
	out := *c
	out.Skins = slices.Clone(c.Skins)
	out.Materials = slices.Clone(c.Materials)
	out.Offsets = slices.Clone(c.Offsets)
	if c.Func != nil {
		fn := *c.Func
		out.Func = &fn
	}
	if c.Image != nil {
		img := *c.Image
		out.Image = &img
	}
	if c.LOD != nil {
		lod := *c.LOD
		out.LOD = &lod
	}
	if c.Collision != nil {
		out.Collision = &CollisionProxy{
			Origin: c.Collision.Origin,
			Parts:  slices.Clone(c.Collision.Parts),
		}
	}
	return out
}

// Isotropic reports whether instances get a single uniform scale factor.
func (c *PlacementClass) Isotropic() bool {
	return c.ScaleMin.X() == 0
}

// Scaled reports whether instances of the class are ever scaled.
func (c *PlacementClass) Scaled() bool {
	if c.Isotropic() {
		return c.ScaleMin.Z() != 1 || c.ScaleMax.Z() != 1
	}
	return c.ScaleMin != geom.Vec3{1, 1, 1} || c.ScaleMax != geom.Vec3{1, 1, 1}
}

// Bounds returns the local footprint, centred in X/Y and standing on z=0.
func (c *PlacementClass) Bounds() geom.Bounds {
	return geom.BoundsFromSize(c.Size)
}
