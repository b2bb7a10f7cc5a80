package seed

import (
	"cmp"
	"slices"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

const (
	defaultCombineDistance = 1024
	minCombineDistance     = 10
)

// member is one instance considered for a composite.
type member struct {
	idx    int
	offset geom.Vec3
	distSq float64
}

// combineInstances merges nearby instances of the same class, skin and visibility
// region into composite classes, up to the part capacity of the model.
func (d *Distribution) combineInstances() {
	if !d.combine || len(d.instances) < 2 {
		return
	}

	limit := d.args.GetFloat("combine_distance", defaultCombineDistance)
	if limit < minCombineDistance {
		d.log.Warn("combine distance too small, using minimum", "distance", limit, "minimum", minCombineDistance)
		limit = minCombineDistance
	}
	limitSq := limit * limit

	regions := d.instanceRegions()
	viewer := d.viewerOrigin()
	bias := d.currentBias()
	// capacities per class, found lazily
	capacity := make(map[int]int)
	merged := 0

	for i := range d.instances {
		seed := &d.instances[i]
		if seed.Merged || regions[i] < 0 {
			continue
		}
		c := d.classes[seed.Class]
		if !combinable(c) || seed.Exists() {
			continue
		}

		capN, ok := capacity[seed.Class]
		if !ok {
			capN = d.partCapacity(c)
			capacity[seed.Class] = capN
		}
		if capN <= 1 {
			continue
		}

		members := []member{{idx: i}}
		for j := i + 1; j < len(d.instances); j++ {
			other := &d.instances[j]
			if other.Merged || other.Exists() || other.Class != seed.Class || other.Skin != seed.Skin || regions[j] != regions[i] {
				continue
			}
			offset := other.Origin.Sub(seed.Origin)
			if offset.LenSqr() > limitSq {
				continue
			}
			members = append(members, member{idx: j, offset: offset})
		}
		if len(members) < 2 {
			continue
		}

		// nearest first; the seed has a zero offset and stays in front
		slices.SortStableFunc(members, func(a, b member) int {
			return cmp.Compare(a.offset.LenSqr(), b.offset.LenSqr())
		})
		if len(members) > capN {
			members = members[:capN]
		}
		for k := range members {
			members[k].distSq = lodDistance(c.LOD, viewer.Sub(d.instances[members[k].idx].Origin), bias)
		}

		pseudo := d.compositeClass(c, seed.Origin, members)
		d.classes = append(d.classes, pseudo)
		for _, m := range members[1:] {
			d.instances[m.idx].Merged = true
			merged++
		}
		seed.Class = len(d.classes) - 1
		seed.Kind = model.KindComposite
		seed.Flags |= model.FlagComposite
		seed.Angles = geom.Angles{}
	}

	if merged == 0 {
		return
	}
	kept := d.instances[:0]
	for _, inst := range d.instances {
		if !inst.Merged {
			kept = append(kept, inst)
		}
	}
	d.instances = kept
	d.log.Info("instances combined",
		"merged", merged,
		"composites", d.numCompositeClasses(),
		"shapes", d.arena.Shapes(),
		"instances", len(d.instances))
}

func combinable(c *model.PlacementClass) bool {
	return !c.NoCombine && !c.Pseudo && !c.Watch && c.Category.Combinable()
}

// instanceRegions returns the visibility region of every instance. Instances
// spanning more than one region get -1 and are never combined. Distributions that
// lie within a single region put every instance into it.
func (d *Distribution) instanceRegions() []int {
	regions := make([]int, len(d.instances))
	if len(d.areas) <= 1 || d.host.Visibility == nil {
		return regions
	}
	for i := range d.instances {
		inst := &d.instances[i]
		c := d.classes[inst.Class]
		areas := d.host.Visibility.Areas(geom.FromTransformed(c.Bounds(), inst.Origin, inst.Axis()))
		if len(areas) == 1 {
			regions[i] = areas[0]
		} else {
			regions[i] = -1
		}
	}
	return regions
}

// lowestModel returns the least detailed model of c, falling back to the base
// model when the host cannot find the last LOD stage.
func (d *Distribution) lowestModel(c *model.PlacementClass) (string, model.ModelHandle) {
	if d.host.Models == nil {
		return c.ModelName, c.Model
	}
	if name := c.LOD.LowestModel(c.ModelName); name != c.ModelName {
		if h, ok := d.host.Models.Find(name); ok {
			return name, h
		}
	}
	if c.Model != 0 {
		return c.ModelName, c.Model
	}
	h, _ := d.host.Models.Find(c.ModelName)
	return c.ModelName, h
}

// partCapacity is how many copies of the lowest detail model one composite holds.
func (d *Distribution) partCapacity(c *model.PlacementClass) int {
	if d.host.Models == nil {
		return 1
	}
	_, h := d.lowestModel(c)
	if h == 0 {
		return 1
	}
	return max(1, d.host.Models.MaxPartCount(h))
}

// compositeClass builds the class of one composite from its source class and
// members. The first member is the composite origin.
func (d *Distribution) compositeClass(src *model.PlacementClass, origin geom.Vec3, members []member) *model.PlacementClass {
	pc := &model.PlacementClass{
		Classname:   DummyClass,
		ModelName:   src.ModelName,
		Model:       src.Model,
		ModelRef:    src.ModelRef,
		Category:    src.Category,
		Pseudo:      true,
		NoCombine:   true,
		Solid:       src.Solid,
		Clip:        src.Clip,
		HasClip:     src.HasClip,
		Offset:      src.Offset,
		Size:        src.Size,
		LOD:         src.LOD,
		SpawnDistSq: src.SpawnDistSq,
		CullDistSq:  src.CullDistSq,
		ScaleMin:    geom.Vec3{1, 1, 1},
		ScaleMax:    geom.Vec3{1, 1, 1},
		Usage:       1,
	}

	pc.Offsets = make([]model.Offset, 0, len(members))
	for _, m := range members {
		inst := &d.instances[m.idx]
		pc.Offsets = append(pc.Offsets, model.Offset{
			Offset: m.offset,
			Angles: inst.Angles,
			Color:  inst.Color,
			Scale:  inst.Scale,
			LOD:    src.LOD.Level(m.distSq) + 1,
		})
	}

	// non-solid members get no collision
	if !src.Solid {
		return pc
	}

	lowest, _ := d.lowestModel(src)
	proxy := &model.CollisionProxy{Origin: origin}
	for _, m := range members {
		inst := &d.instances[m.idx]
		part := model.CollisionPart{
			Model:  lowest,
			Origin: m.offset,
			Angles: inst.Angles,
			Scale:  inst.Scale,
		}
		part.Shape, part.Cloned = d.partShape(src, lowest)
		d.arena.TrackShape(part.Shape)
		proxy.Parts = append(proxy.Parts, part)
	}

	pc.Collision = proxy
	d.arena.TrackProxy(proxy)
	return pc
}

// partShape returns the collision shape of one composite part: a copy of the
// inline clip when there is one, the collision model of the lowest detail model
// otherwise.
func (d *Distribution) partShape(src *model.PlacementClass, lowest string) (model.ShapeHandle, bool) {
	if d.host.Collision == nil {
		return 0, false
	}
	if src.Clip != 0 {
		return d.host.Collision.Clone(src.Clip), true
	}
	s, ok := d.host.Collision.Load(lowest)
	if !ok {
		return 0, false
	}
	return s, false
}
