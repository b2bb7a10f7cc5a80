package seed

import (
	"math"
	"strings"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/model"
)

const (
	// maxTries bounds the attempts to place one instance.
	maxTries = 8
	// falloffTries bounds the disk samples per attempt.
	falloffTries = 16
	// minProbability is the acceptance below which an attempt is abandoned early.
	minProbability = 0.000001
)

// placer holds the per-run caches of one placement pass.
type placer struct {
	d      *Distribution
	bounds []geom.Bounds
	boxes  []geom.Box
	// byClass lists the placed instance indices of every class, for bunching.
	byClass map[int][]int
	images  map[int]*imagemap.Map

	rotMin, rotMax geom.Angles
	spacing        float64
}

// place drops composite classes from the previous generation and places every
// instance again from the current seeds.
func (d *Distribution) place() {
	kept := d.classes[:0]
	for _, c := range d.classes {
		if !c.Pseudo {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(d.classes); i++ {
		d.classes[i] = nil
	}
	d.classes = kept
	d.arena.Release(d.host.Collision)
	d.arena = NewArena()

	d.instances = nil
	d.numExisting = 0
	d.numComposites = 0

	n := len(d.classes)
	order := make([]int, n)
	for i, c := range d.classes {
		order[i] = i
		c.Seed = d.rnd.NextSeed()
	}

	// shuffle with the sequencing stream so truncated counts sample across classes
	d.rnd.SetSeed(d.rnd.NextSeed())
	for i := range n {
		second := int(d.rnd.Float() * float32(n))
		order[i], order[second] = order[second], order[i]
	}

	p := &placer{
		d:       d,
		byClass: make(map[int][]int),
		images:  make(map[int]*imagemap.Map),
		rotMin:  d.args.GetAngles("seed_rotate_min", d.args.GetAngles("rotate_min", geom.Angles{})),
		rotMax:  d.args.GetAngles("seed_rotate_max", d.args.GetAngles("rotate_max", geom.Angles{Pitch: 5, Yaw: 360, Roll: 5})),
		spacing: d.args.GetFloat("spacing", 0),
	}

	for _, ci := range order {
		if len(d.instances) >= d.numEntities {
			break
		}
		c := d.classes[ci]
		if c.Watch {
			continue
		}

		d.rnd.SetSeed(c.Seed)
		count := c.MaxEntities
		if count <= 0 {
			count = max(c.NumEntities, 0)
		}
		d.log.Debug("placing class", "classname", c.Classname, "count", count, "seed", c.Seed)

		for range count {
			if inst, ok := p.placeOne(ci); ok {
				p.add(inst)
			}
			if len(d.instances) >= d.numEntities {
				break
			}
		}
	}

	d.adoptBrethren()
}

func (p *placer) add(inst model.Instance) {
	d := p.d
	c := d.classes[inst.Class]
	box := geom.BoxFromBounds(c.Bounds(), inst.Origin, inst.Axis())
	p.bounds = append(p.bounds, box.Bounds())
	p.boxes = append(p.boxes, box)
	p.byClass[inst.Class] = append(p.byClass[inst.Class], len(d.instances))
	d.instances = append(d.instances, inst)
	c.Usage++
}

// placeOne runs the bounded rejection sampling for one instance of class ci.
func (p *placer) placeOne(ci int) (model.Instance, bool) {
	d := p.d
	c := d.classes[ci]
	for range maxTries {
		origin, angles, ok := p.candidate(ci, c)
		if !ok {
			continue
		}
		return p.finish(ci, c, origin, angles), true
	}
	return model.Instance{}, false
}

// candidate performs one attempt and returns a valid world transform or false.
func (p *placer) candidate(ci int, c *model.PlacementClass) (geom.Vec3, geom.Angles, bool) {
	d := p.d
	rnd := d.rnd

	local, ok := p.sample(ci, c)
	if !ok {
		return geom.Vec3{}, geom.Angles{}, false
	}

	probability := 1.0
	if c.Falloff == model.FalloffFunc && c.Func != nil {
		fp, ok := funcProbability(c.Func, local, d.size)
		if !ok {
			return geom.Vec3{}, geom.Angles{}, false
		}
		probability = fp
	}

	if c.Image != nil {
		if m := p.image(c.Image); m != nil {
			probability *= imageProbability(m, c.Image, local, d.size)
			if probability < minProbability {
				return geom.Vec3{}, geom.Angles{}, false
			}
		}
	}

	origin := d.axis.Mul3x1(local).Add(d.origin)
	traceEnd := geom.Vec3{origin.X(), origin.Y(), d.origin.Z() - d.size.Z()}

	if len(c.Materials) > 0 && d.host.Ground != nil {
		if tr := d.host.Ground.TracePoint(origin, traceEnd); tr.Hit() {
			probability *= materialProbability(c, tr.Surface.Name())
		}
	}

	r := float64(rnd.Float())
	if r > probability {
		return geom.Vec3{}, geom.Angles{}, false
	}

	var floorAngles geom.Angles
	if c.Floor {
		if d.host.Ground != nil {
			if tr := d.host.Ground.TraceBounds(origin, traceEnd, c.Bounds()); tr.Hit() {
				origin = tr.EndPos
				floorAngles = geom.AnglesFromMat3(tr.EndAxis)
			}
		}
	} else {
		origin[2] = c.Origin.Z()
	}

	zp, ok := zBandProbability(c.Z, origin.Z())
	if !ok {
		return geom.Vec3{}, geom.Angles{}, false
	}
	probability *= zp
	if r > probability {
		return geom.Vec3{}, geom.Angles{}, false
	}

	if c.SinkMin != 0 || c.SinkMax != 0 {
		origin[2] -= c.SinkMin + float64(rnd.Float())*(c.SinkMax-c.SinkMin)
	}
	origin = origin.Add(c.Offset)

	angles := geom.Angles{
		Pitch: floorAngles.Pitch + p.rotMin.Pitch + float64(rnd.Float())*(p.rotMax.Pitch-p.rotMin.Pitch),
		Yaw:   floorAngles.Yaw + p.rotMin.Yaw + float64(rnd.Float())*(p.rotMax.Yaw-p.rotMin.Yaw),
		Roll:  floorAngles.Roll + p.rotMin.Roll + float64(rnd.Float())*(p.rotMax.Roll-p.rotMin.Roll),
	}

	if !d.box.Contains(origin) {
		return geom.Vec3{}, geom.Angles{}, false
	}

	box := geom.BoxFromBounds(c.Bounds(), origin, angles.ToMat3())
	if !c.NoInhibit && p.inhibited(c, origin, box) {
		return geom.Vec3{}, geom.Angles{}, false
	}
	if p.collides(c, box) {
		return geom.Vec3{}, geom.Angles{}, false
	}
	return origin, angles, true
}

// sample returns a position relative to the distribution centre, in its local frame.
func (p *placer) sample(ci int, c *model.PlacementClass) (geom.Vec3, bool) {
	d := p.d
	rnd := d.rnd
	size := d.size

	if len(d.instances) > 0 && float64(rnd.Float()) < c.Bunching {
		if same := p.byClass[ci]; len(same) > 0 {
			radius := math.Sqrt(geom.LenSqrXY(c.Size)) + 2*c.Spacing
			target := d.instances[same[int(float64(len(same))*float64(rnd.Float()))]]
			// at least twice the radius apart so they do not overlap, at most 2 1/3
			dist := 2*radius + float64(rnd.Float())*radius/3
			offset := geom.Polar(dist, 0, float64(rnd.Float())*360)
			rel := d.axis.Transpose().Mul3x1(target.Origin.Sub(d.origin))
			return rel.Add(offset), true
		}
	}

	switch {
	case c.Falloff.UsesDisk():
		for range falloffTries {
			x := 2 * (float64(rnd.Float()) - 0.5)
			y := 2 * (float64(rnd.Float()) - 0.5)
			dsq := x*x + y*y
			if dsq > 1 {
				continue
			}
			if c.Falloff == model.FalloffCutoff || float64(rnd.Float()) > diskProbability(c.Falloff, c.FalloffFactor, dsq) {
				return geom.Vec3{x * size.X() / 2, y * size.Y() / 2, 0}, true
			}
		}
		return geom.Vec3{}, false
	default:
		return geom.Vec3{
			(float64(rnd.Float()) - 0.5) * size.X(),
			(float64(rnd.Float()) - 0.5) * size.Y(),
			0,
		}, true
	}
}

// funcProbability evaluates s*(x*fx + y*fy + a) at a local position. With zero
// clamping a value outside [min, max] rejects the position.
func funcProbability(fn *model.FuncFalloff, local, size geom.Vec3) (float64, bool) {
	x := local.X()/size.X() + 0.5
	if fn.XSquared {
		x *= x
	}
	y := local.Y()/size.Y() + 0.5
	if fn.YSquared {
		y *= y
	}
	p := fn.S * (x*fn.X + y*fn.Y + fn.A)
	if fn.Clamp {
		return min(max(p, fn.Min), fn.Max), true
	}
	if p < fn.Min || p > fn.Max {
		return 0, false
	}
	return p, true
}

// imageProbability samples the density map at a local position. Images are stored
// top-left first, hence the flipped x.
func imageProbability(m *imagemap.Map, img *model.ImageDensity, local, size geom.Vec3) float64 {
	u := imagemap.Wrap(img.ScaleX*(local.X()/size.X()) + img.OffsetX + 0.5)
	v := imagemap.Wrap(img.ScaleY*(local.Y()/size.Y()) + img.OffsetY + 0.5)
	value := int(m.At(1-u, v))
	if img.Invert {
		value = 255 - value
	}
	return float64(value) / 256
}

func (p *placer) image(img *model.ImageDensity) *imagemap.Map {
	if m, ok := p.images[img.ID]; ok {
		return m
	}
	var m *imagemap.Map
	if p.d.host.Images != nil {
		m, _ = p.d.host.Images.Map(imagemap.ID(img.ID))
	}
	p.images[img.ID] = m
	return m
}

// materialProbability returns the probability of the first material whose name
// starts with the surface name, else the class default.
func materialProbability(c *model.PlacementClass, surface string) float64 {
	if surface == "" {
		return c.DefaultProb
	}
	for _, m := range c.Materials {
		if strings.HasPrefix(m.Name, surface) {
			return m.Probability
		}
	}
	return c.DefaultProb
}

// zBandProbability checks a height against a z band. Outside a normal band, or
// strictly inside an inverted one, the position is rejected. Inverted bands fade
// the probability near their edges.
func zBandProbability(z model.ZBand, h float64) (float64, bool) {
	if !z.Invert {
		if h < z.Min || h > z.Max {
			return 0, false
		}
		return 1, true
	}

	if h > z.Min && h < z.Max {
		return 0, false
	}
	p := 1.0
	if z.FadeIn > 0 && h < z.Min+z.FadeIn {
		p *= ((z.Min + z.FadeIn) - h) / z.FadeIn
	}
	if z.FadeOut > 0 && h > z.Max-z.FadeOut {
		p *= (z.Max - h) / z.FadeOut
	}
	return p, true
}

// inhibited reports whether any inhibitor keeps the class out of box.
func (p *placer) inhibited(c *model.PlacementClass, origin geom.Vec3, box geom.Box) bool {
	rnd := p.d.rnd
	for i := range p.d.inhibitors {
		inh := &p.d.inhibitors[i]
		if !box.Intersects(inh.Box) || !inh.Applies(c.Classname) {
			continue
		}
		if inh.Falloff == model.FalloffNone {
			return true
		}

		// distance to the inhibitor centre, normalized so its rim is at 1
		x := 2 * (origin.X() - inh.Origin.X()) / inh.Size.X()
		y := 2 * (origin.Y() - inh.Origin.Y()) / inh.Size.Y()
		dsq := x*x + y*y
		if dsq >= 1 {
			continue
		}
		if float64(rnd.Float()) > diskProbability(inh.Falloff, inh.Factor, dsq) {
			return true
		}
	}
	return false
}

// collides checks box, grown by the effective spacing, against every placed
// instance: bounds first, then the oriented boxes.
func (p *placer) collides(c *model.PlacementClass, box geom.Box) bool {
	spacing := p.spacing
	if c.Spacing != 0 {
		spacing = c.Spacing
	}
	// a positive spacing is kept even by classes that do not collide
	if c.Collide == model.CollideNone && spacing <= 0 {
		return false
	}
	test := box.Expand(spacing)
	testBounds := box.Bounds().Expand(spacing)
	for k := range p.boxes {
		if p.bounds[k].Intersects(testBounds) && p.boxes[k].Intersects(test) {
			return true
		}
	}
	return false
}

// finish draws the remaining random attributes of an accepted instance.
func (p *placer) finish(ci int, c *model.PlacementClass, origin geom.Vec3, angles geom.Angles) model.Instance {
	rnd := p.d.rnd

	span := c.ColorMax.Sub(c.ColorMin)
	color := geom.Vec3{
		span.X()*float64(rnd.Float()) + c.ColorMin.X(),
		span.Y()*float64(rnd.Float()) + c.ColorMin.Y(),
		span.Z()*float64(rnd.Float()) + c.ColorMin.Z(),
	}

	skin := 0
	if len(c.Skins) > 0 {
		skin = c.Skins[int(float64(rnd.Float())*float64(len(c.Skins)))]
	}

	var scale geom.Vec3
	if c.Isotropic() {
		f := float64(rnd.Float())*(c.ScaleMax.Z()-c.ScaleMin.Z()) + c.ScaleMin.Z()
		scale = geom.Vec3{f, f, f}
	} else {
		s := c.ScaleMax.Sub(c.ScaleMin)
		scale = geom.Vec3{
			s.X()*float64(rnd.Float()) + c.ScaleMin.X(),
			s.Y()*float64(rnd.Float()) + c.ScaleMin.Y(),
			s.Z()*float64(rnd.Float()) + c.ScaleMin.Z(),
		}
	}

	return model.Instance{
		Class:  ci,
		Kind:   kindOf(c),
		Origin: origin,
		Angles: angles,
		Color:  geom.PackColor(color),
		Scale:  scale,
		Skin:   skin,
		Flags:  model.FlagHidden,
	}
}

// adoptBrethren registers every live object a watch class looks after that stands
// inside the distribution as an already spawned instance.
func (d *Distribution) adoptBrethren() {
	if d.host.Spawner == nil {
		return
	}
	for ci, c := range d.classes {
		if !c.Watch {
			continue
		}
		for _, obj := range d.host.Spawner.FindByClass(c.Classname) {
			if !d.box.Contains(obj.Origin) {
				continue
			}
			d.log.Debug("watching over brethren", "entity", obj.ID, "origin", obj.Origin)
			d.instances = append(d.instances, model.Instance{
				Class:  ci,
				Kind:   kindOf(c),
				Origin: obj.Origin,
				Angles: geom.AnglesFromMat3(obj.Axis),
				Color:  geom.PackColor(geom.Vec3{1, 1, 1}),
				Scale:  geom.Vec3{1, 1, 1},
				Skin:   d.skins.Add(obj.Skin),
				Entity: obj.ID,
				Flags:  model.FlagExists | model.FlagSpawned,
			})
			c.Usage++
			d.numExisting++
		}
	}
}
