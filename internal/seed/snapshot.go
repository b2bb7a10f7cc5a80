package seed

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// SnapshotSchema is the layout version written by Save.
const SnapshotSchema = 1

// Snapshot is the persistent state of a distribution. Handles to host resources
// are not stored; Restore finds them again by name.
type Snapshot struct {
	Schema     int    `yaml:"schema"`
	Name       string `yaml:"name"`
	Generation string `yaml:"generation"`

	Active         bool `yaml:"active"`
	WaitForTrigger bool `yaml:"wait_for_trigger"`
	Combine        bool `yaml:"combine"`
	Prepared       bool `yaml:"prepared"`
	Debug          int  `yaml:"debug,omitempty"`

	Seed     int32 `yaml:"seed"`
	Sequence int32 `yaml:"sequence"`
	Root     int32 `yaml:"root"`

	NumEntities   int `yaml:"num_entities"`
	NumExisting   int `yaml:"num_existing"`
	NumComposites int `yaml:"num_composites"`
	ThinkCounter  int `yaml:"think_counter"`

	LODBias           float64       `yaml:"lod_bias"`
	DistCheckInterval time.Duration `yaml:"dist_check_interval"`
	DistCheckStamp    time.Time     `yaml:"dist_check_stamp"`

	Origin geom.Vec3 `yaml:"origin"`
	Axis   geom.Mat3 `yaml:"axis"`
	Size   geom.Vec3 `yaml:"size"`
	Areas  []int     `yaml:"areas,omitempty"`

	Classes    []model.PlacementClass `yaml:"classes"`
	Instances  []model.Instance       `yaml:"instances"`
	Inhibitors []model.Inhibitor      `yaml:"inhibitors,omitempty"`
	Skins      []string               `yaml:"skins"`
}

// Save captures the distribution state.
func (d *Distribution) Save() *Snapshot {
	s := &Snapshot{
		Schema:     SnapshotSchema,
		Name:       d.name,
		Generation: d.arena.ID().String(),

		Active:         d.active,
		WaitForTrigger: d.waitForTrigger,
		Combine:        d.combine,
		Prepared:       d.prepared,
		Debug:          d.debug,

		Seed:     d.rnd.Seed(),
		Sequence: d.rnd.Sequence(),
		Root:     d.rnd.Root(),

		NumEntities:   d.numEntities,
		NumExisting:   d.numExisting,
		NumComposites: d.numComposites,
		ThinkCounter:  d.thinkCounter,

		LODBias:           d.lodBias,
		DistCheckInterval: d.distCheckInterval,
		DistCheckStamp:    d.distCheckStamp,

		Origin: d.origin,
		Axis:   d.axis,
		Size:   d.size,
		Areas:  append([]int(nil), d.areas...),

		Instances:  append([]model.Instance(nil), d.instances...),
		Inhibitors: append([]model.Inhibitor(nil), d.inhibitors...),
		Skins:      d.skins.Names(),
	}
	s.Classes = make([]model.PlacementClass, len(d.classes))
	for i, c := range d.classes {
		s.Classes[i] = c.Clone()
	}
	return s
}

// Restore replaces the distribution state with s. Host handles are looked up by
// name, composite collision shapes are rebuilt into an arena of the saved
// generation, and live objects that no longer exist are marked hidden so they
// spawn again. Composite objects that survived get their offsets back on the next
// Think.
func (d *Distribution) Restore(s *Snapshot) error {
	if s.Schema != SnapshotSchema {
		return fmt.Errorf("restoring %s: schema %d: %w", s.Name, s.Schema, ErrSchemaVersion)
	}
	gen, err := uuid.Parse(s.Generation)
	if err != nil {
		return fmt.Errorf("restoring %s: parsing generation: %w", s.Name, err)
	}

	d.arena.Release(d.host.Collision)
	d.arena = restoredArena(gen)

	d.active = s.Active
	d.waitForTrigger = s.WaitForTrigger
	d.combine = s.Combine
	d.prepared = s.Prepared
	d.debug = s.Debug
	d.retired = false
	// an unprepared snapshot still needs its templates for the first Think
	if s.Prepared {
		d.targets = nil
	}

	d.rnd.SetRoot(s.Root)
	d.rnd.SetSeed(s.Seed)
	d.rnd.SetSequence(s.Sequence)

	d.numEntities = s.NumEntities
	d.thinkCounter = s.ThinkCounter
	d.lodBias = s.LODBias
	d.distCheckInterval = s.DistCheckInterval
	d.distCheckStamp = s.DistCheckStamp

	d.origin = s.Origin
	d.axis = s.Axis
	d.size = s.Size
	d.box = geom.NewBox(d.origin, d.size, d.axis)
	d.areas = append([]int(nil), s.Areas...)

	d.skins = model.SkinTableFromNames(s.Skins)
	d.inhibitors = append([]model.Inhibitor(nil), s.Inhibitors...)
	d.instances = append([]model.Instance(nil), s.Instances...)

	d.classes = make([]*model.PlacementClass, len(s.Classes))
	for i := range s.Classes {
		c := s.Classes[i].Clone()
		d.restoreHandles(&c)
		d.classes[i] = &c
	}
	for _, c := range d.classes {
		if c.Pseudo {
			d.restoreProxy(c)
		}
	}

	d.numExisting, d.numComposites = 0, 0
	gone := 0
	for i := range d.instances {
		inst := &d.instances[i]
		if !inst.Exists() {
			continue
		}
		if _, _, ok := d.host.Spawner.Transform(inst.Entity); !ok {
			inst.MarkHidden()
			gone++
			continue
		}
		d.numExisting++
		if inst.Kind == model.KindComposite {
			d.numComposites++
		}
	}
	d.restoreLOD = d.numCompositeClasses() > 0

	d.log.Info("distribution restored",
		"generation", gen,
		"classes", len(d.classes),
		"instances", len(d.instances),
		"existing", d.numExisting,
		"gone", gone)
	return nil
}

// restoreHandles finds the model, clip and image of c again.
func (d *Distribution) restoreHandles(c *model.PlacementClass) {
	if c.ModelRef != "" && d.host.Models != nil {
		if h, ok := d.host.Models.Find(c.ModelRef); ok {
			c.Model = h
		} else {
			d.log.Warn("model not found after restore", "classname", c.Classname, "model", c.ModelRef)
		}
	}
	if c.HasClip && d.host.Collision != nil {
		if s, ok := d.host.Collision.Load(c.ModelRef); ok {
			c.Clip = s
		}
	}
	if c.Image != nil && d.host.Images != nil {
		id, err := d.host.Images.Load(c.Image.Name)
		if err != nil {
			d.log.Warn("image map not found after restore", "classname", c.Classname, "map", c.Image.Name, "error", err)
			c.Image = nil
			return
		}
		c.Image.ID = int(id)
	}
}

// restoreProxy loads the collision shapes of a composite class into the arena.
func (d *Distribution) restoreProxy(c *model.PlacementClass) {
	if c.Collision == nil {
		return
	}
	for i := range c.Collision.Parts {
		part := &c.Collision.Parts[i]
		part.Shape = 0
		if d.host.Collision == nil {
			continue
		}
		if part.Cloned && c.Clip != 0 {
			part.Shape = d.host.Collision.Clone(c.Clip)
		} else if s, ok := d.host.Collision.Load(part.Model); ok {
			part.Shape = s
		}
		d.arena.TrackShape(part.Shape)
	}
	d.arena.TrackProxy(c.Collision)
}
