package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// combineFixture compiles one rock class and places instances by hand at the given
// x coordinates.
func combineFixture(t *testing.T, maxParts int, combineDistance string, xs ...float64) (*testHost, *Distribution) {
	t.Helper()
	h := rockHost(t)
	h.models.maxParts = maxParts
	h.models.add("models/rock.lwo", geom.BoundsFromSize(geom.Vec3{8, 8, 8}))

	args := distArgs("randseed", "1")
	if combineDistance != "" {
		args.Set("combine_distance", combineDistance)
	}
	d := newTestDistribution(t, h, geom.Vec3{4096, 4096, 64}, args)
	c, _, err := d.CompileClass(h.template("rock", "atdm:rock", geom.Vec3{8, 8, 8}), false)
	require.NoError(t, err)
	d.classes = []*model.PlacementClass{c}

	for _, x := range xs {
		d.instances = append(d.instances, model.Instance{
			Class:  0,
			Origin: geom.Vec3{x, 0, 0},
			Angles: geom.Angles{Yaw: x / 10},
			Scale:  geom.Vec3{1, 1, 1},
			Color:  geom.PackColor(geom.Vec3{1, 1, 1}),
			Flags:  model.FlagHidden,
		})
	}
	return h, d
}

func offsetsX(c *model.PlacementClass) []float64 {
	out := make([]float64, len(c.Offsets))
	for i, o := range c.Offsets {
		out[i] = o.Offset.X()
	}
	return out
}

func TestCombine_WithinDistance(t *testing.T) {
	h, d := combineFixture(t, 8, "500", 0, 300, 900)
	d.combineInstances()

	require.Len(t, d.Instances(), 2)
	require.Len(t, d.Classes(), 2)

	seed := d.Instances()[0]
	assert.Equal(t, 1, seed.Class)
	assert.Equal(t, model.KindComposite, seed.Kind)
	assert.True(t, seed.Flags.Has(model.FlagComposite))
	assert.True(t, seed.Angles.Zero())

	composite := d.Classes()[1]
	assert.True(t, composite.Pseudo)
	assert.True(t, composite.NoCombine)
	assert.Equal(t, DummyClass, composite.Classname)
	require.Len(t, composite.Offsets, 2)
	assert.Equal(t, geom.Vec3{}, composite.Offsets[0].Offset)
	assert.Equal(t, geom.Vec3{300, 0, 0}, composite.Offsets[1].Offset)
	assert.Equal(t, geom.Angles{Yaw: 30}, composite.Offsets[1].Angles)

	require.NotNil(t, composite.Collision)
	assert.Equal(t, geom.Vec3{}, composite.Collision.Origin)
	assert.Len(t, composite.Collision.Parts, 2)
	assert.Equal(t, 2, d.Arena().Shapes())
	assert.Equal(t, 1, d.Arena().Proxies())
	assert.Len(t, h.collision.live, 2)

	loner := d.Instances()[1]
	assert.Equal(t, 0, loner.Class)
	assert.Equal(t, geom.Vec3{900, 0, 0}, loner.Origin)
	assert.Equal(t, model.KindSimple, loner.Kind)
}

func TestCombine_CapacityKeepsNearest(t *testing.T) {
	_, d := combineFixture(t, 3, "", 0, 400, 100, 300, 200)
	d.combineInstances()

	require.Len(t, d.Classes(), 3)
	assert.Equal(t, []float64{0, 100, 200}, offsetsX(d.Classes()[1]))
	// the released members form a composite of their own
	assert.Equal(t, []float64{0, -100}, offsetsX(d.Classes()[2]))

	require.Len(t, d.Instances(), 2)
	assert.Equal(t, geom.Vec3{0, 0, 0}, d.Instances()[0].Origin)
	assert.Equal(t, geom.Vec3{400, 0, 0}, d.Instances()[1].Origin)
	for _, inst := range d.Instances() {
		assert.False(t, inst.Merged)
	}
}

func TestCombine_SingleCapacityNeverCombines(t *testing.T) {
	_, d := combineFixture(t, 1, "", 0, 10, 20)
	d.combineInstances()

	assert.Len(t, d.Instances(), 3)
	assert.Len(t, d.Classes(), 1)
}

func TestCombine_DistanceHasMinimum(t *testing.T) {
	_, d := combineFixture(t, 8, "1", 0, 9, 100, 111)
	d.combineInstances()

	// 100 and 111 are further apart than the minimum of 10
	require.Len(t, d.Classes(), 2)
	assert.Equal(t, []float64{0, 9}, offsetsX(d.Classes()[1]))
	assert.Len(t, d.Instances(), 3)
}

func TestCombine_SkinsAndNoCombine(t *testing.T) {
	t.Run("different skins stay apart", func(t *testing.T) {
		_, d := combineFixture(t, 8, "", 0, 50)
		d.instances[1].Skin = d.skins.Add("mossy")
		d.combineInstances()
		assert.Len(t, d.Instances(), 2)
	})

	t.Run("disabled combining", func(t *testing.T) {
		_, d := combineFixture(t, 8, "", 0, 50)
		d.combine = false
		d.combineInstances()
		assert.Len(t, d.Instances(), 2)
	})

	t.Run("no combine class", func(t *testing.T) {
		_, d := combineFixture(t, 8, "", 0, 50)
		d.classes[0].NoCombine = true
		d.combineInstances()
		assert.Len(t, d.Instances(), 2)
	})
}

func TestCombine_LODOffsets(t *testing.T) {
	h := rockHost(t)
	h.define("atdm:tree", "",
		"model", "models/tree.lwo",
		"model_lod_1", "models/tree_low.lwo",
		"lod_1_distance", "500",
	)
	h.models.add("models/tree.lwo", geom.BoundsFromSize(geom.Vec3{8, 8, 8}))
	h.models.add("models/tree_low.lwo", geom.BoundsFromSize(geom.Vec3{8, 8, 8}))

	d := newTestDistribution(t, h, geom.Vec3{4096, 4096, 64}, distArgs("randseed", "1"))
	c, _, err := d.CompileClass(h.template("tree", "atdm:tree", geom.Vec3{8, 8, 8}), false)
	require.NoError(t, err)
	require.NotNil(t, c.LOD)
	d.classes = []*model.PlacementClass{c}
	for _, x := range []float64{0, 800} {
		d.instances = append(d.instances, model.Instance{Origin: geom.Vec3{x, 0, 0}, Scale: geom.Vec3{1, 1, 1}, Flags: model.FlagHidden})
	}

	d.combineInstances()

	composite := d.Classes()[1]
	require.Len(t, composite.Offsets, 2)
	// viewer at the origin: the seed is at full detail, the far member one stage down
	assert.Equal(t, 1, composite.Offsets[0].LOD)
	assert.Equal(t, 2, composite.Offsets[1].LOD)
	assert.Equal(t, "models/tree_low.lwo", composite.Collision.Parts[0].Model)
	assert.Same(t, c.LOD, composite.LOD)
}

func TestCombine_NonSolidHasNoCollision(t *testing.T) {
	h, d := combineFixture(t, 8, "500", 0, 300)
	d.classes[0].Solid = false
	d.combineInstances()

	require.Len(t, d.Classes(), 2)
	composite := d.Classes()[1]
	assert.True(t, composite.Pseudo)
	assert.False(t, composite.Solid)
	assert.Len(t, composite.Offsets, 2)
	assert.Nil(t, composite.Collision)
	assert.Zero(t, d.Arena().Shapes())
	assert.Zero(t, d.Arena().Proxies())
	assert.Empty(t, h.collision.live)
}

func TestLowestModel(t *testing.T) {
	h := rockHost(t)
	base := h.models.add("models/tree.lwo", geom.BoundsFromSize(geom.Vec3{8, 8, 8}))
	low := h.models.add("models/tree_low.lwo", geom.BoundsFromSize(geom.Vec3{8, 8, 8}))
	d := newTestDistribution(t, h, geom.Vec3{64, 64, 64}, distArgs())

	c := &model.PlacementClass{ModelName: "models/tree.lwo", Model: base}
	name, handle := d.lowestModel(c)
	assert.Equal(t, "models/tree.lwo", name)
	assert.Equal(t, base, handle)

	c.LOD = &model.LODData{Stages: [model.LODLevels]model.LODStage{{Model: "models/tree_low.lwo"}, {}}}
	name, handle = d.lowestModel(c)
	assert.Equal(t, "models/tree_low.lwo", name)
	assert.Equal(t, low, handle)

	// a missing last stage falls back to the base model
	c.LOD = &model.LODData{Stages: [model.LODLevels]model.LODStage{{Model: "models/tree_gone.lwo"}}}
	name, handle = d.lowestModel(c)
	assert.Equal(t, "models/tree.lwo", name)
	assert.Equal(t, base, handle)
}
