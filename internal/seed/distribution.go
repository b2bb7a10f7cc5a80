package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/rng"
	"github.com/udisondev/seed/internal/spawnargs"
)

const (
	// InhibitorClass is the definition name of exclusion volumes.
	InhibitorClass = "atdm:no_seed"
	// DistributionClass is the definition name of distributions in map files.
	DistributionClass = "atdm:seed"
)

// Source describes the distribution entity: its arguments, placement and the
// templates it targets.
type Source struct {
	Args   *spawnargs.Dict
	Origin geom.Vec3
	Axis   geom.Mat3
	// Bounds are the local render bounds; their centre offsets Origin.
	Bounds  geom.Bounds
	Targets []TemplateSource
}

// Distribution owns the classes, instances and inhibitors of one procedurally
// populated region and schedules their live objects.
type Distribution struct {
	name string
	args *spawnargs.Dict
	host Host
	log  *slog.Logger
	rnd  *rng.Random

	origin   geom.Vec3
	axis     geom.Mat3
	size     geom.Vec3
	box      geom.Box
	areas    []int
	baseOrig geom.Vec3

	targets    []TemplateSource
	classes    []*model.PlacementClass
	instances  []model.Instance
	inhibitors []model.Inhibitor
	skins      *model.SkinTable
	arena      *Arena

	// numEntities is the target count; -1 deactivates the distribution.
	numEntities   int
	numExisting   int
	numComposites int

	lodBias        float64
	active         bool
	prepared       bool
	waitForTrigger bool
	combine        bool
	retired        bool
	debug          int

	distCheckInterval time.Duration
	distCheckStamp    time.Time
	thinkCounter      int

	// restoreLOD defers composite re-registration after a restore to the next Think.
	restoreLOD bool
}

// New creates a distribution. now anchors the phase jitter of distance checks.
func New(name string, src Source, host Host, now time.Time) *Distribution {
	args := src.Args
	if args == nil {
		args = spawnargs.New()
	}
	axis := src.Axis
	if axis == (geom.Mat3{}) {
		axis = geom.Identity()
	}

	d := &Distribution{
		name:     name,
		args:     args,
		host:     host,
		log:      slog.With("seed", name),
		rnd:      rng.New(),
		baseOrig: src.Origin,
		origin:   src.Origin.Add(src.Bounds.Center()),
		axis:     axis,
		size:     src.Bounds.Size(),
		targets:  src.Targets,
		skins:    model.NewSkinTable(),
		arena:    NewArena(),
		active:   true,

		debug:          args.GetInt("debug", 0),
		combine:        args.GetBool("combine", true),
		waitForTrigger: args.GetBool("wait_for_trigger", false),
	}
	d.box = geom.NewBox(d.origin, d.size, d.axis)
	d.lodBias = d.currentBias()

	if host.Visibility != nil {
		d.areas = host.Visibility.Areas(geom.FromTransformed(geom.CenteredBounds(d.size), d.origin, d.axis))
	}

	d.distCheckInterval = time.Duration(1000*args.GetFloat("dist_check_period", 0.05)) * time.Millisecond
	// spread the checks of many distributions over different ticks, but make sure the
	// first Think always runs one
	jitter := time.Duration(float64(d.distCheckInterval) * (1 + rand.Float64()))
	d.distCheckStamp = now.Add(-jitter)

	d.log.Info("distribution created",
		"size", d.size,
		"areas", len(d.areas),
		"targets", len(d.targets),
		"combine", d.combine)
	return d
}

// Name returns the distribution name.
func (d *Distribution) Name() string { return d.name }

// Active reports whether the distribution is scheduling.
func (d *Distribution) Active() bool {
	return d.active && !d.retired && d.numEntities >= 0
}

// Prepared reports whether the placement has been computed.
func (d *Distribution) Prepared() bool { return d.prepared }

// NumEntities returns the current target count, or -1 once deactivated.
func (d *Distribution) NumEntities() int { return d.numEntities }

// NumExisting returns the number of instances with a live object.
func (d *Distribution) NumExisting() int { return d.numExisting }

// NumComposites returns the number of composite live objects.
func (d *Distribution) NumComposites() int { return d.numComposites }

// Instances returns the instance table. Callers must not modify it.
func (d *Distribution) Instances() []model.Instance { return d.instances }

// Classes returns the class table. Callers must not modify it.
func (d *Distribution) Classes() []*model.PlacementClass { return d.classes }

// Inhibitors returns the compiled exclusion volumes.
func (d *Distribution) Inhibitors() []model.Inhibitor { return d.inhibitors }

// Skins returns the skin table.
func (d *Distribution) Skins() *model.SkinTable { return d.skins }

// Arena returns the current generation arena.
func (d *Distribution) Arena() *Arena { return d.arena }

// Box returns the oriented bounds instances are placed in.
func (d *Distribution) Box() geom.Box { return d.box }

// Root returns the root seed the placement starts from.
func (d *Distribution) Root() int32 { return d.rnd.Root() }

func (d *Distribution) currentBias() float64 {
	if d.host.Quality == nil {
		return 1
	}
	return d.host.Quality.LODBias()
}

func (d *Distribution) viewerOrigin() geom.Vec3 {
	if d.host.Viewer == nil {
		return d.origin
	}
	return d.host.Viewer.Origin()
}

// Prepare compiles every target, computes the target counts, seeds the generators
// and runs placement and combination.
func (d *Distribution) Prepare(now time.Time) error {
	d.classes = nil
	d.inhibitors = nil

	root := int32(d.args.GetInt("randseed", 0))
	if root == 0 {
		root = rng.Derive(now.Unix(), d.name)
	}
	d.rnd.SetRoot(root)
	// spawn skins draw from the instance stream, placement reseeds it per class
	d.rnd.SetSeed(root)

	var errs []error
	for _, t := range d.targets {
		switch {
		case t.Classname() == InhibitorClass:
			inh, _ := d.CompileInhibitor(t)
			d.inhibitors = append(d.inhibitors, inh)
		case t.Args.GetBool("seed_watch_brethren", false):
			d.log.Info("watching over brethren", "template", t.Name, "classname", t.Classname())
			errs = append(errs, d.addClass(t, true))
		default:
			errs = append(errs, d.addClass(t, false))
		}
	}
	for _, t := range d.spawnClassSources() {
		errs = append(errs, d.addClass(t, false))
	}

	if len(d.classes) == 0 {
		errs = append(errs, ErrNoClasses)
	}
	if len(d.classes) > 0 {
		d.ComputeEntityCount()
		if d.numEntities <= 0 {
			d.log.Warn("entity count is invalid", "count", d.numEntities)
			d.numEntities = 0
		}
	}
	d.log.Info("entity count computed", "count", d.numEntities, "classes", len(d.classes))

	d.distribute()

	// templates are consumed by compilation
	d.targets = nil
	d.prepared = true

	if d.args.GetBool("remove", false) {
		d.retire()
	} else if len(d.instances) == 0 {
		d.log.Info("no instances to control, becoming inactive")
		d.numEntities = -1
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("preparing distribution %s: %w", d.name, err)
	}
	return nil
}

func (d *Distribution) addClass(t TemplateSource, watch bool) error {
	c, _, err := d.CompileClass(t, watch)
	if err != nil {
		d.log.Error("compiling template failed", "template", t.Name, "error", err)
		return err
	}
	d.classes = append(d.classes, c)
	return nil
}

// spawnClassSources builds templates for every spawn_classN argument, placing them
// at the distribution origin with a random choice out of spawn_skinN.
func (d *Distribution) spawnClassSources() []TemplateSource {
	var out []TemplateSource
	for _, kv := range d.args.MatchPrefix("spawn_class") {
		def, ok := d.host.Defs.Lookup(kv.Value)
		if !ok {
			d.log.Warn("spawn class definition not found", "key", kv.Key, "classname", kv.Value)
			continue
		}

		args := def.Args.Clone()
		args.Set("classname", kv.Value)
		args.Set("origin", spawnargs.FormatVector(d.baseOrig))
		args.Set("seed_floor", "1")
		args.Set("floor", "0")
		suffix := kv.Key[len("spawn_class"):]
		args.Set("skin", randomPart(d.rnd, d.args.GetString("spawn_skin"+suffix, "")))
		args.Set("random_skin", "")

		src := TemplateSource{
			Name: d.name + "_" + kv.Key,
			Args: args,
			Axis: geom.Identity(),
		}
		if d.host.Models != nil {
			if h, ok := d.host.Models.Find(args.GetString("model", "")); ok {
				src.Model = h
				src.Bounds = d.host.Models.Bounds(h)
			}
		}
		out = append(out, src)
	}
	return out
}

// randomPart picks one entry of a comma separated list; '' stands for the empty string.
func randomPart(rnd *rng.Random, list string) string {
	if list == "" {
		return ""
	}
	parts := strings.Split(list, ",")
	p := strings.TrimSpace(parts[int(float64(rnd.Float())*float64(len(parts)))])
	if p == "''" {
		return ""
	}
	return p
}

// distribute places and combines all instances, deactivating the distribution
// when nothing could be placed.
func (d *Distribution) distribute() {
	start := time.Now()
	d.place()
	placed := len(d.instances)
	d.combineInstances()
	d.log.Info("distribution computed",
		"placed", placed,
		"instances", len(d.instances),
		"composites", d.arena.Proxies(),
		"generation", d.arena.ID(),
		"duration", time.Since(start))
}

// retire spawns every instance unmanaged and stops scheduling. Distributions that
// own composites cannot retire because the composites need them after a restore.
func (d *Distribution) retire() {
	if d.numCompositeClasses() > 0 {
		d.log.Info("cannot remove distribution with composites", "composites", d.numCompositeClasses())
		return
	}
	d.log.Info("spawning all instances and removing distribution", "count", len(d.instances))
	for i := range d.instances {
		d.spawn(i, false)
	}
	d.classes = nil
	d.instances = nil
	d.numEntities = -1
	d.active = false
	d.retired = true
}

func (d *Distribution) numCompositeClasses() int {
	n := 0
	for _, c := range d.classes {
		if c.Pseudo {
			n++
		}
	}
	return n
}

// Activate ends waiting for a trigger.
func (d *Distribution) Activate() {
	d.active = true
	d.waitForTrigger = false
}

// Enable resumes scheduling.
func (d *Distribution) Enable() { d.active = true }

// Disable stops scheduling until Enable or Activate.
func (d *Distribution) Disable() { d.active = false }
