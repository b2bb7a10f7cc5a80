package seed

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/seed/internal/data"
	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeModels struct {
	byName   map[string]model.ModelHandle
	bounds   map[model.ModelHandle]geom.Bounds
	maxParts int
	next     model.ModelHandle
	freed    int
}

func newFakeModels(maxParts int) *fakeModels {
	return &fakeModels{
		byName:   make(map[string]model.ModelHandle),
		bounds:   make(map[model.ModelHandle]geom.Bounds),
		maxParts: maxParts,
		next:     1,
	}
}

func (m *fakeModels) add(name string, b geom.Bounds) model.ModelHandle {
	h := m.next
	m.next++
	m.byName[name] = h
	m.bounds[h] = b
	return h
}

func (m *fakeModels) Find(name string) (model.ModelHandle, bool) {
	h, ok := m.byName[name]
	return h, ok
}

func (m *fakeModels) Duplicate(h model.ModelHandle, _ string, _ geom.Vec3) (model.ModelHandle, error) {
	dup := m.next
	m.next++
	m.bounds[dup] = m.bounds[h]
	return dup, nil
}

func (m *fakeModels) MaxPartCount(model.ModelHandle) int { return m.maxParts }

func (m *fakeModels) Bounds(h model.ModelHandle) geom.Bounds { return m.bounds[h] }

func (m *fakeModels) Free(model.ModelHandle) { m.freed++ }

type fakeCollision struct {
	next  model.ShapeHandle
	live  map[model.ShapeHandle]string
	freed int
}

func newFakeCollision() *fakeCollision {
	return &fakeCollision{next: 1, live: make(map[model.ShapeHandle]string)}
}

func (c *fakeCollision) Load(name string) (model.ShapeHandle, bool) {
	if name == "" {
		return 0, false
	}
	s := c.next
	c.next++
	c.live[s] = name
	return s, true
}

func (c *fakeCollision) Clone(s model.ShapeHandle) model.ShapeHandle {
	out := c.next
	c.next++
	c.live[out] = c.live[s]
	return out
}

func (c *fakeCollision) Free(s model.ShapeHandle) {
	delete(c.live, s)
	c.freed++
}

type fakeObject struct {
	args      *spawnargs.Dict
	origin    geom.Vec3
	axis      geom.Mat3
	composite *model.Composite
	velocity  geom.Vec3
	model     model.ModelHandle
}

type fakeSpawner struct {
	defs     Definitions
	objects  map[model.EntityID]*fakeObject
	next     model.EntityID
	max      int
	attached int
	removed  int
}

func newFakeSpawner(defs Definitions, limit int) *fakeSpawner {
	return &fakeSpawner{defs: defs, objects: make(map[model.EntityID]*fakeObject), next: 1, max: limit}
}

func (s *fakeSpawner) Spawn(args *spawnargs.Dict) (model.EntityID, error) {
	if _, ok := s.defs.Lookup(args.GetString("classname", "")); !ok {
		return 0, fmt.Errorf("unknown definition %q", args.GetString("classname", ""))
	}
	if len(s.objects) >= s.max {
		return 0, fmt.Errorf("entity limit %d reached", s.max)
	}
	id := s.next
	s.next++
	s.objects[id] = &fakeObject{args: args.Clone(), origin: args.GetVector("origin", geom.Vec3{}), axis: geom.Identity()}
	return id, nil
}

func (s *fakeSpawner) Remove(id model.EntityID) {
	delete(s.objects, id)
	s.removed++
}

func (s *fakeSpawner) Transform(id model.EntityID) (geom.Vec3, geom.Mat3, bool) {
	o, ok := s.objects[id]
	if !ok {
		return geom.Vec3{}, geom.Mat3{}, false
	}
	return o.origin, o.axis, true
}

func (s *fakeSpawner) SetAxis(id model.EntityID, axis geom.Mat3) {
	if o, ok := s.objects[id]; ok {
		o.axis = axis
	}
}

func (s *fakeSpawner) SetModel(id model.EntityID, h model.ModelHandle, _ model.ShapeHandle) {
	if o, ok := s.objects[id]; ok {
		o.model = h
	}
}

func (s *fakeSpawner) AttachComposite(id model.EntityID, c *model.Composite) error {
	o, ok := s.objects[id]
	if !ok {
		return fmt.Errorf("no object %d", id)
	}
	o.composite = c
	s.attached++
	return nil
}

func (s *fakeSpawner) SetVelocity(id model.EntityID, v geom.Vec3) {
	if o, ok := s.objects[id]; ok {
		o.velocity = v
	}
}

func (s *fakeSpawner) FindByClass(classname string) []model.LiveObject {
	var out []model.LiveObject
	for id, o := range s.objects {
		if o.args.GetString("classname", "") == classname {
			out = append(out, model.LiveObject{ID: id, Classname: classname, Origin: o.origin, Axis: o.axis})
		}
	}
	return out
}

func (s *fakeSpawner) NumEntities() int { return len(s.objects) }

func (s *fakeSpawner) MaxEntities() int { return s.max }

// fakeGround is flat ground at z 0: stone west of x 0, wood east of it.
type fakeGround struct{ traces int }

func (g *fakeGround) TracePoint(start, end geom.Vec3) model.Trace {
	g.traces++
	surface := model.Surface{Type: model.SurfaceWood}
	if start.X() < 0 {
		surface.Type = model.SurfaceStone
	}
	return model.Trace{
		Fraction: 0.5,
		EndPos:   geom.Vec3{start.X(), start.Y(), 0},
		EndAxis:  geom.Identity(),
		Surface:  surface,
	}
}

func (g *fakeGround) TraceBounds(start, end geom.Vec3, _ geom.Bounds) model.Trace {
	return g.TracePoint(start, end)
}

type fakeViewer struct{ origin geom.Vec3 }

func (v *fakeViewer) Origin() geom.Vec3 { return v.origin }

type fakeQuality struct{ bias float64 }

func (q *fakeQuality) LODBias() float64 { return q.bias }

// testHost bundles the fakes so tests can reach into them.
type testHost struct {
	Host
	defs      *data.Registry
	models    *fakeModels
	collision *fakeCollision
	spawner   *fakeSpawner
	viewer    *fakeViewer
	quality   *fakeQuality
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()

	defs := data.NewRegistry()
	defs.Register(&data.EntityDef{Name: DistributionClass})
	defs.Register(&data.EntityDef{Name: InhibitorClass})
	defs.Register(&data.EntityDef{Name: DummyClass})
	defs.Register(&data.EntityDef{Name: FuncStatic})

	h := &testHost{
		defs:      defs,
		models:    newFakeModels(8),
		collision: newFakeCollision(),
		spawner:   newFakeSpawner(defs, 4096),
		viewer:    &fakeViewer{},
		quality:   &fakeQuality{bias: 1},
	}
	h.Host = Host{
		Models:    h.models,
		Collision: h.collision,
		Spawner:   h.spawner,
		Defs:      h.defs,
		Viewer:    h.viewer,
		Quality:   h.quality,
	}
	return h
}

// define registers a definition from "key value" pairs.
func (h *testHost) define(name, spawnClass string, pairs ...string) {
	args := spawnargs.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		args.Set(pairs[i], pairs[i+1])
	}
	h.defs.Register(&data.EntityDef{Name: name, SpawnClass: spawnClass, Args: args})
}

// template builds a template of classname with the given footprint and extra
// arguments, inheriting its definition like map loading does.
func (h *testHost) template(name, classname string, size geom.Vec3, pairs ...string) TemplateSource {
	args := spawnargs.New()
	args.Set("classname", classname)
	args.Set("name", name)
	for i := 0; i+1 < len(pairs); i += 2 {
		args.Set(pairs[i], pairs[i+1])
	}
	if def, ok := h.defs.Lookup(classname); ok {
		args.Inherit(def.Args)
	}
	return TemplateSource{
		Name:   name,
		Args:   args,
		Bounds: geom.BoundsFromSize(size),
		Axis:   geom.Identity(),
	}
}

// distArgs builds distribution arguments from "key value" pairs.
func distArgs(pairs ...string) *spawnargs.Dict {
	args := spawnargs.New()
	args.Set("classname", DistributionClass)
	for i := 0; i+1 < len(pairs); i += 2 {
		args.Set(pairs[i], pairs[i+1])
	}
	return args
}

func newTestDistribution(t *testing.T, h *testHost, size geom.Vec3, args *spawnargs.Dict, targets ...TemplateSource) *Distribution {
	t.Helper()
	return New("seed_"+strings.ReplaceAll(t.Name(), "/", "_"), Source{
		Args:    args,
		Axis:    geom.Identity(),
		Bounds:  geom.CenteredBounds(size),
		Targets: targets,
	}, h.Host, testNow)
}

func prepared(t *testing.T, h *testHost, size geom.Vec3, args *spawnargs.Dict, targets ...TemplateSource) *Distribution {
	t.Helper()
	d := newTestDistribution(t, h, size, args, targets...)
	require.NoError(t, d.Prepare(testNow))
	return d
}

// think runs Think far enough apart that every call performs a distance check.
func think(d *Distribution, steps int, from time.Time) time.Time {
	for range steps {
		from = from.Add(time.Second)
		d.Think(from)
	}
	return from
}
