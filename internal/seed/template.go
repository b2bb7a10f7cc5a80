package seed

import (
	"fmt"
	"math"
	"strings"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

const (
	// DummyClass is the definition spawned for merged or inline map geometry.
	DummyClass = "atdm:seed_dummy_static"
	// DummyModel stands in for inline geometry whose visual is carried by handle.
	DummyModel = "models/darkmod/junk/plank_short.lwo"
	// FuncStatic is the classname of plain map geometry.
	FuncStatic = "func_static"
)

// TemplateSource is one configuration source a class or inhibitor is compiled from.
type TemplateSource struct {
	Name string
	// Args are the entity arguments with its definition already inherited.
	Args *spawnargs.Dict
	// Bounds are the unrotated render bounds.
	Bounds geom.Bounds
	Axis   geom.Mat3
	Model  model.ModelHandle
	Clip   model.ShapeHandle
}

// Classname returns the definition name of the source.
func (s TemplateSource) Classname() string {
	return s.Args.GetString("classname", "")
}

// CompileClass turns a template into a placement class.
func (d *Distribution) CompileClass(src TemplateSource, watch bool) (*model.PlacementClass, []Diagnostic, error) {
	diag := &diagnostics{template: src.Name}
	t := src.Args
	chain := spawnargs.Chain{Template: t, Distribution: d.args}

	c := &model.PlacementClass{
		Classname: src.Classname(),
		ModelName: t.GetString("model", ""),
		Watch:     watch,
		Solid:     t.GetBool("solid", true),
		NoCombine: !t.GetBool("seed_combine", true),
	}

	def, ok := d.host.Defs.Lookup(c.Classname)
	if !ok {
		return nil, diag.list, fmt.Errorf("compiling template %s: %w: %q", src.Name, ErrMissingDefinition, c.Classname)
	}
	c.Category = model.ParseCategory(def.SpawnClass)

	switch {
	case watch:
		c.NoCombine = true
	case !c.Category.Combinable():
		c.NoCombine = true
	case t.GetString("scriptobject", "") != "":
		c.NoCombine = true
	case strings.HasSuffix(strings.ToLower(c.ModelName), ".prt"):
		c.NoCombine = true
	}

	if !watch {
		c.Score = max(1, t.GetInt("seed_score", 1))
	}

	d.compileSkins(c, t)

	c.Origin = t.GetVector("origin", geom.Vec3{})
	c.Offset = t.GetVector("seed_offset", geom.Vec3{})
	c.Floor = chain.Bool("seed_floor", "floor", false)
	c.Stack = t.GetBool("seed_stack", true)
	c.NoInhibit = t.GetBool("seed_noinhibit", false)
	c.Spacing = t.GetFloat("seed_spacing", 0)

	c.SinkMin = chain.Float("seed_sink_min", "sink_min", 0)
	c.SinkMax = chain.Float("seed_sink_max", "sink_max", 0)
	if c.SinkMax < c.SinkMin {
		c.SinkMax = c.SinkMin
	}

	c.ScaleMin = parseScale(chain.String("seed_scale_min", "scale_min", "1 1 1"))
	c.ScaleMax = parseScale(chain.String("seed_scale_max", "scale_max", "1 1 1"))
	c.ScaleMax = geom.MaxElem(c.ScaleMax, c.ScaleMin)

	c.Falloff, c.FalloffFactor = parseFalloff(chain.String("seed_falloff", "falloff", "none"), chain, 2, diag)
	if c.Falloff == model.FalloffFunc {
		fn, err := compileFunc(chain, diag)
		if err != nil {
			return nil, diag.list, fmt.Errorf("compiling template %s: %w", src.Name, err)
		}
		c.Func = fn
	}

	imgDensity, err := d.compileImage(c, t, chain, diag)
	if err != nil {
		return nil, diag.list, fmt.Errorf("compiling template %s: %w", src.Name, err)
	}

	c.Bunching = chain.Float("seed_bunching", "bunching", 0)
	if c.Bunching < 0 || c.Bunching > 1 {
		diag.warn("bunching", "value %g outside 0..1, disabling", c.Bunching)
		c.Bunching = 0
	}

	if c.Spacing > 0 {
		c.Collide = model.CollideAtAll
	} else {
		c.Collide = model.CollideStatic
	}

	c.Size = src.Bounds.Size()
	if c.Size.X() < 0.001 {
		diag.warn("size", "x extent %g too small, using 1", c.Size.X())
		c.Size[0] = 1
	}
	if c.Size.Y() < 0.001 {
		diag.warn("size", "y extent %g too small, using 1", c.Size.Y())
		c.Size[1] = 1
	}

	hideDist := t.GetFloat("hide_distance", 0)
	cullRange := chain.Float("seed_cull_range", "cull_range", 150)
	if cullRange > 0 && hideDist > 0 {
		c.CullDistSq = (hideDist + cullRange) * (hideDist + cullRange)
		c.SpawnDistSq = (hideDist + cullRange/2) * (hideDist + cullRange/2)
	}

	c.LOD = parseLOD(def.Args, 1)

	c.DefaultProb = chain.Float("seed_probability", "probability", 1)
	for _, kv := range t.MatchPrefix("seed_material_") {
		name := kv.Key[len("seed_material_"):]
		p := t.GetFloat(kv.Key, 1)
		if p < 0 || p > 1 {
			diag.warn(kv.Key, "probability %g outside 0..1, ignoring material %s", p, name)
			continue
		}
		c.Materials = append(c.Materials, model.MaterialProb{Name: name, Probability: p})
	}

	if c.Classname == FuncStatic {
		switch {
		case c.ModelName == src.Name:
			// inline map geometry: keep the visual and clip, spawn a dummy to carry them
			c.Model = src.Model
			c.ModelRef = src.Name
			c.Clip = src.Clip
			c.HasClip = src.Clip != 0
			c.ModelName = DummyModel
			c.Classname = DummyClass
		case d.combine:
			c.Classname = DummyClass
		case c.Scaled():
			c.Model = src.Model
			c.ModelRef = c.ModelName
		}
	}

	colorDefault := t.GetString("_color", "1 1 1")
	c.ColorMin = t.GetVector("seed_color_min", spawnargs.ParseVector(d.args.GetString("color_min", colorDefault)))
	c.ColorMax = t.GetVector("seed_color_max", spawnargs.ParseVector(d.args.GetString("color_max", colorDefault)))
	c.ColorMin = geom.ClampVec(c.ColorMin, geom.Vec3{0, 0, 0}, geom.Vec3{1, 1, 1})
	c.ColorMax = geom.ClampVec(c.ColorMax, c.ColorMin, geom.Vec3{1, 1, 1})

	c.ImpulseMin = spawnargs.ParseVector(chain.String("seed_impulse_min", "impulse_min", "0 -90 0"))
	c.ImpulseMax = spawnargs.ParseVector(chain.String("seed_impulse_max", "impulse_max", "0 90 360"))
	c.ImpulseMin = geom.ClampVec(c.ImpulseMin, geom.Vec3{0, -90, 0}, geom.Vec3{1000, 90, 359.9})
	c.ImpulseMax = geom.ClampVec(c.ImpulseMax, c.ImpulseMin, geom.Vec3{1000, 90, 360})

	compileZBand(c, chain, diag)

	avg := (max(0.1, c.Size.X()) + c.Spacing) * (max(0.1, c.Size.Y()) + c.Spacing)
	if c.Falloff >= model.FalloffCutoff && c.Falloff <= model.FalloffRoot {
		avg *= 4 / math.Pi
	}
	density := max(1e-6, t.GetFloat("seed_density", 1))
	base := max(1e-6, t.GetFloat("seed_base_density", 1))
	c.AvgSize = avg / (base * imgDensity * density)

	c.MaxEntities = d.args.GetInt("seed_max_entities", 0)

	for _, dg := range diag.list {
		d.log.Warn("template setting corrected", "template", dg.Template, "key", dg.Key, "reason", dg.Message)
	}
	return c, diag.list, nil
}

// compileSkins fills the skin list. Without an explicit "skin" the default skin
// is always a candidate.
func (d *Distribution) compileSkins(c *model.PlacementClass, t *spawnargs.Dict) {
	if !t.Has("skin") {
		c.Skins = append(c.Skins, 0)
	}
	for _, kv := range t.MatchPrefix("skin") {
		if strings.HasPrefix(strings.ToLower(kv.Key), "skin_lod") {
			continue
		}
		c.Skins = append(c.Skins, d.skins.Add(kv.Value))
	}

	for _, part := range strings.Split(t.GetString("random_skin", ""), ",") {
		skin := strings.TrimSpace(part)
		if skin == "" {
			continue
		}
		if skin == "''" {
			skin = ""
		}
		c.Skins = append(c.Skins, d.skins.Add(skin))
	}
}

// parseScale reads "x y z", or a single number meaning a uniform factor stored in z.
func parseScale(s string) geom.Vec3 {
	if !strings.Contains(strings.TrimSpace(s), " ") {
		v := spawnargs.ParseVector(s)
		return geom.Vec3{0, 0, v.X()}
	}
	return spawnargs.ParseVector(s)
}

func compileFunc(chain spawnargs.Chain, diag *diagnostics) (*model.FuncFalloff, error) {
	fn := &model.FuncFalloff{
		A:        chain.Float("seed_func_a", "func_a", 0),
		S:        chain.Float("seed_func_s", "func_s", 0.5),
		XSquared: chain.String("seed_func_Xt", "func_Xt", "X") == "X*X",
		YSquared: chain.String("seed_func_Yt", "func_Yt", "Y") == "Y*Y",
		X:        chain.Float("seed_func_x", "func_x", 1),
		Y:        chain.Float("seed_func_y", "func_y", 1),
		Min:      chain.Float("seed_func_min", "func_min", 0),
		Max:      chain.Float("seed_func_max", "func_max", 1),
	}
	if fn.Min < 0 {
		diag.warn("func_min", "value %g below 0, using 0", fn.Min)
		fn.Min = 0
	}
	if fn.Max > 1 {
		diag.warn("func_max", "value %g above 1, using 1", fn.Max)
		fn.Max = 1
	}
	if fn.Min > fn.Max {
		diag.warn("func_min", "value %g above func_max %g, using 0", fn.Min, fn.Max)
		fn.Min = 0
	}

	switch f := chain.String("seed_func_f", "func_f", "clamp"); f {
	case "clamp":
		fn.Clamp = true
	case "zeroclamp":
	default:
		return nil, fmt.Errorf("%w: clamp policy %q, expected clamp or zeroclamp", ErrInvalidFunc, f)
	}
	return fn, nil
}

// compileImage loads the density map of a class and returns its mean density, or 1
// when the class has no map.
func (d *Distribution) compileImage(c *model.PlacementClass, t *spawnargs.Dict, chain spawnargs.Chain, diag *diagnostics) (float64, error) {
	name := chain.String("seed_map", "map", "")
	if name == "" || d.host.Images == nil {
		return 1, nil
	}

	id, err := d.host.Images.Load(name)
	if err != nil {
		diag.warn("map", "could not load image map: %v", err)
		return 1, nil
	}
	m, ok := d.host.Images.Map(id)
	if !ok {
		return 0, fmt.Errorf("accessing image data of %s: %w", name, imagemap.ErrUnreadable)
	}
	if m.Bpp != 1 {
		return 0, fmt.Errorf("image map %s has %d bytes per pixel: %w", name, m.Bpp, imagemap.ErrBytesPerPixel)
	}

	img := &model.ImageDensity{
		Name:    name,
		ID:      int(id),
		Invert:  chain.Bool("seed_map_invert", "map_invert", false),
		ScaleX:  mapSetting(t, d.args, "scale", "x", 1),
		ScaleY:  mapSetting(t, d.args, "scale", "y", 1),
		OffsetX: mapSetting(t, d.args, "ofs", "x", 0),
		OffsetY: mapSetting(t, d.args, "ofs", "y", 0),
	}
	c.Image = img

	density := m.Density()
	if !img.Identity() {
		density = m.ResampledDensity(img.ScaleX, img.ScaleY, img.OffsetX, img.OffsetY)
	}
	if img.Invert {
		density = 1 - density
	}
	if density < 0.001 {
		diag.warn("map", "average density %g of %s is very low, using 0.001", density, name)
		density = 0.001
	}
	return density, nil
}

// mapSetting resolves seed_map_<kind>_<axis>, seed_map_<kind>, map_<kind>_<axis>,
// map_<kind> in that order.
func mapSetting(t, dist *spawnargs.Dict, kind, axis string, def float64) float64 {
	if t.Has("seed_map_" + kind + "_" + axis) {
		return t.GetFloat("seed_map_"+kind+"_"+axis, def)
	}
	if t.Has("seed_map_" + kind) {
		return t.GetFloat("seed_map_"+kind, def)
	}
	if dist.Has("map_" + kind + "_" + axis) {
		return dist.GetFloat("map_"+kind+"_"+axis, def)
	}
	return dist.GetFloat("map_"+kind, def)
}

func compileZBand(c *model.PlacementClass, chain spawnargs.Chain, diag *diagnostics) {
	z := model.ZBand{
		Invert:  chain.Bool("seed_z_invert", "z_invert", false),
		Min:     chain.Float("seed_z_min", "z_min", -model.ZUnbounded),
		Max:     chain.Float("seed_z_max", "z_max", model.ZUnbounded),
		FadeIn:  chain.Float("seed_z_fadein", "z_fadein", 0),
		FadeOut: chain.Float("seed_z_fadeout", "z_fadeout", 0),
	}
	if z.Max < z.Min {
		diag.warn("z_max", "value %g below z_min %g, using z_min", z.Max, z.Min)
		z.Max = z.Min
	}
	if z.FadeIn < 0 {
		diag.warn("z_fadein", "negative fade %g, using 0", z.FadeIn)
		z.FadeIn = 0
	}
	if z.FadeOut < 0 {
		diag.warn("z_fadeout", "negative fade %g, using 0", z.FadeOut)
		z.FadeOut = 0
	}
	width := z.Max - z.Min
	if z.FadeOut > width {
		diag.warn("z_fadeout", "fade %g wider than the band %g, using the band", z.FadeOut, width)
		z.FadeOut = width
	}
	// the fades may meet but not overlap
	if z.FadeIn > width-z.FadeOut {
		z.FadeIn = width - z.FadeOut
	}
	if z.Min != -model.ZUnbounded && !c.Floor {
		diag.warn("z_min", "z band needs flooring, enabling floor")
		c.Floor = true
	}
	c.Z = z
}
