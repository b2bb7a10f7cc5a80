package seed

import (
	"fmt"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// strategy is the per-Kind behaviour around spawning and culling a live object.
type strategy struct {
	// afterSpawn finishes a freshly spawned object. inst still carries the flags
	// from before the spawn.
	afterSpawn func(d *Distribution, inst *model.Instance, c *model.PlacementClass, id model.EntityID) error
	afterCull  func(d *Distribution, inst *model.Instance)
}

var strategies = [...]strategy{
	model.KindSimple:    {afterSpawn: spawnSimple, afterCull: func(*Distribution, *model.Instance) {}},
	model.KindComposite: {afterSpawn: spawnComposite, afterCull: cullComposite},
	model.KindPhysical:  {afterSpawn: spawnPhysical, afterCull: func(*Distribution, *model.Instance) {}},
}

func strategyFor(k model.Kind) strategy {
	if k < 0 || int(k) >= len(strategies) {
		return strategies[model.KindSimple]
	}
	return strategies[k]
}

// kindOf picks the variant for instances of c.
func kindOf(c *model.PlacementClass) model.Kind {
	switch {
	case c.Pseudo:
		return model.KindComposite
	case c.Category == model.CategoryMoveable:
		return model.KindPhysical
	}
	return model.KindSimple
}

// spawnSimple gives inline geometry and scaled classes their own copy of the visual.
func spawnSimple(d *Distribution, inst *model.Instance, c *model.PlacementClass, id model.EntityID) error {
	if c.Model == 0 || d.host.Models == nil {
		return nil
	}
	h, err := d.host.Models.Duplicate(c.Model, c.Classname, inst.Scale)
	if err != nil {
		return fmt.Errorf("duplicating model of %s: %w", c.Classname, err)
	}
	var clip model.ShapeHandle
	if c.Clip != 0 && d.host.Collision != nil {
		clip = d.host.Collision.Clone(c.Clip)
	}
	d.host.Spawner.SetModel(id, h, clip)
	return nil
}

// spawnComposite attaches the prebuilt composite visual and collision instead of
// letting the spawn rebuild it.
func spawnComposite(d *Distribution, _ *model.Instance, c *model.PlacementClass, id model.EntityID) error {
	if err := d.host.Spawner.AttachComposite(id, compositeOf(c)); err != nil {
		return fmt.Errorf("attaching composite: %w", err)
	}
	d.numComposites++
	return nil
}

func cullComposite(d *Distribution, _ *model.Instance) {
	d.numComposites--
}

// spawnPhysical pushes a moveable with a random impulse the first time it appears.
func spawnPhysical(d *Distribution, inst *model.Instance, c *model.PlacementClass, id model.EntityID) error {
	if inst.Flags.Has(model.FlagSpawned) {
		return nil
	}
	span := c.ImpulseMax.Sub(c.ImpulseMin)
	impulse := geom.Vec3{
		span.X()*float64(d.rnd.Float()) + c.ImpulseMin.X(),
		span.Y()*float64(d.rnd.Float()) + c.ImpulseMin.Y(),
		span.Z()*float64(d.rnd.Float()) + c.ImpulseMin.Z(),
	}
	// magnitude, inclination, azimuth
	d.host.Spawner.SetVelocity(id, geom.Polar(impulse.X(), impulse.Y(), impulse.Z()))
	return nil
}

func compositeOf(c *model.PlacementClass) *model.Composite {
	return &model.Composite{
		Model:     c.ModelName,
		Handle:    c.Model,
		LOD:       c.LOD,
		Offsets:   c.Offsets,
		Collision: c.Collision,
	}
}
