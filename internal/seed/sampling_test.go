package seed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/rng"
)

func TestPlacement_MaterialProbability(t *testing.T) {
	t.Run("denied material", func(t *testing.T) {
		h := rockHost(t)
		ground := &fakeGround{}
		h.Host.Ground = ground
		d := prepared(t, h, geom.Vec3{512, 512, 64}, distArgs("randseed", "13", "max_entities", "80", "combine", "0"),
			h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}, "seed_material_stone", "0", "seed_material_wood", "1"),
		)

		require.NotEmpty(t, d.Instances())
		assert.Positive(t, ground.traces)
		for _, inst := range d.Instances() {
			assert.GreaterOrEqual(t, inst.Origin.X(), 0.0, "rock at %v on stone", inst.Origin)
		}
	})

	t.Run("default for unlisted material", func(t *testing.T) {
		h := rockHost(t)
		h.Host.Ground = &fakeGround{}
		d := prepared(t, h, geom.Vec3{512, 512, 64}, distArgs("randseed", "13", "max_entities", "80", "combine", "0"),
			h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}, "seed_material_stone", "1", "seed_probability", "0"),
		)

		require.NotEmpty(t, d.Instances())
		for _, inst := range d.Instances() {
			assert.Less(t, inst.Origin.X(), 0.0, "rock at %v on wood", inst.Origin)
		}
	})
}

func TestMaterialProbability(t *testing.T) {
	c := &model.PlacementClass{
		DefaultProb: 0.3,
		Materials:   []model.MaterialProb{{Name: "stone_rough", Probability: 0.9}, {Name: "wood", Probability: 0.1}},
	}
	assert.InDelta(t, 0.9, materialProbability(c, "stone"), 1e-9)
	assert.InDelta(t, 0.1, materialProbability(c, "wood"), 1e-9)
	assert.InDelta(t, 0.3, materialProbability(c, "glass"), 1e-9)
	assert.InDelta(t, 0.3, materialProbability(c, ""), 1e-9)
}

func TestPlacement_ImageDensity(t *testing.T) {
	// left column white, right column black; images are mirrored along x
	newHost := func(t *testing.T) *testHost {
		h := rockHost(t)
		images := imagemap.NewManager(t.TempDir())
		images.Register(imagemap.FromGray("half.png", 2, 1, []byte{255, 0}))
		h.Host.Images = images
		return h
	}

	t.Run("white half", func(t *testing.T) {
		h := newHost(t)
		d := prepared(t, h, geom.Vec3{512, 512, 64}, distArgs("randseed", "17", "max_entities", "60", "combine", "0"),
			h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}, "seed_map", "half.png"),
		)
		c := d.Classes()[0]
		require.NotNil(t, c.Image)
		assert.Equal(t, "half.png", c.Image.Name)

		require.NotEmpty(t, d.Instances())
		for _, inst := range d.Instances() {
			assert.Greater(t, inst.Origin.X(), 0.0, "rock at %v on the black half", inst.Origin)
		}
	})

	t.Run("inverted", func(t *testing.T) {
		h := newHost(t)
		d := prepared(t, h, geom.Vec3{512, 512, 64}, distArgs("randseed", "17", "max_entities", "60", "combine", "0"),
			h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}, "seed_map", "half.png", "seed_map_invert", "1"),
		)

		require.NotEmpty(t, d.Instances())
		for _, inst := range d.Instances() {
			assert.LessOrEqual(t, inst.Origin.X(), 0.0, "rock at %v on the white half", inst.Origin)
		}
	})
}

func TestImageProbability(t *testing.T) {
	m := imagemap.FromGray("ramp", 4, 1, []byte{0, 64, 128, 255})
	size := geom.Vec3{400, 400, 64}
	img := &model.ImageDensity{ScaleX: 1, ScaleY: 1}

	// u = 0.875 reads the first column after mirroring
	assert.InDelta(t, 0, imageProbability(m, img, geom.Vec3{150, 0, 0}, size), 1e-9)
	assert.InDelta(t, 255.0/256, imageProbability(m, img, geom.Vec3{-150, 0, 0}, size), 1e-9)

	img.Invert = true
	assert.InDelta(t, 255.0/256, imageProbability(m, img, geom.Vec3{150, 0, 0}, size), 1e-9)
	assert.InDelta(t, 0, imageProbability(m, img, geom.Vec3{-150, 0, 0}, size), 1e-9)
}

func TestPlacement_FuncFalloff(t *testing.T) {
	h := rockHost(t)
	// p = x - 0.5 across the footprint, below zero on the western half
	d := prepared(t, h, geom.Vec3{512, 512, 64}, distArgs("randseed", "23", "max_entities", "60", "combine", "0"),
		h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4},
			"seed_falloff", "function",
			"seed_func_s", "1",
			"seed_func_x", "1",
			"seed_func_y", "0",
			"seed_func_a", "-0.5",
			"seed_func_f", "zeroclamp",
		),
	)
	c := d.Classes()[0]
	assert.Equal(t, model.FalloffFunc, c.Falloff)
	require.NotNil(t, c.Func)
	assert.False(t, c.Func.Clamp)

	require.NotEmpty(t, d.Instances())
	for _, inst := range d.Instances() {
		assert.GreaterOrEqual(t, inst.Origin.X(), 0.0, "rock at %v where the function is negative", inst.Origin)
	}
}

func TestFuncProbability(t *testing.T) {
	size := geom.Vec3{100, 100, 64}

	tests := []struct {
		name  string
		fn    model.FuncFalloff
		local geom.Vec3
		want  float64
		ok    bool
	}{
		{
			name:  "linear in x",
			fn:    model.FuncFalloff{S: 1, X: 1, Max: 1},
			local: geom.Vec3{25, 0, 0},
			want:  0.75,
			ok:    true,
		},
		{
			name:  "squared x",
			fn:    model.FuncFalloff{S: 1, X: 1, XSquared: true, Max: 1},
			local: geom.Vec3{0, 0, 0},
			want:  0.25,
			ok:    true,
		},
		{
			name:  "clamped above max",
			fn:    model.FuncFalloff{S: 1, X: 1, Y: 1, Max: 0.8, Clamp: true},
			local: geom.Vec3{50, 50, 0},
			want:  0.8,
			ok:    true,
		},
		{
			name:  "zero clamp rejects below min",
			fn:    model.FuncFalloff{S: 2, X: 1, A: -0.5, Min: 0.1, Max: 1},
			local: geom.Vec3{-30, 0, 0},
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := funcProbability(&tt.fn, tt.local, size)
			require.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestZBandProbability(t *testing.T) {
	normal := model.ZBand{Min: 0, Max: 100}
	inverted := model.ZBand{Invert: true, Min: 0, Max: 100, FadeIn: 20, FadeOut: 20}

	tests := []struct {
		name string
		band model.ZBand
		h    float64
		want float64
		ok   bool
	}{
		{name: "inside normal band", band: normal, h: 50, want: 1, ok: true},
		{name: "below normal band", band: normal, h: -1},
		{name: "above normal band", band: normal, h: 101},
		{name: "inside inverted band", band: inverted, h: 50},
		{name: "below inverted band", band: inverted, h: -10, want: 1.5, ok: true},
		{name: "inverted lower edge", band: inverted, h: 0, want: 1, ok: true},
		{name: "inverted upper edge", band: inverted, h: 100, want: 0, ok: true},
		{name: "inverted without fades", band: model.ZBand{Invert: true, Min: 0, Max: 100}, h: 150, want: 1, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := zBandProbability(tt.band, tt.h)
			require.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPlacement_InvertedZBand(t *testing.T) {
	h := rockHost(t)

	// every candidate sits at z 0
	d := prepared(t, h, geom.Vec3{128, 128, 64}, distArgs("randseed", "29", "max_entities", "10", "combine", "0"),
		h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}, "seed_z_invert", "1", "seed_z_min", "-50", "seed_z_max", "50"),
	)
	assert.Empty(t, d.Instances())

	d = prepared(t, h, geom.Vec3{128, 128, 64}, distArgs("randseed", "29", "max_entities", "10", "combine", "0"),
		h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}, "seed_z_invert", "1", "seed_z_min", "10", "seed_z_max", "50"),
	)
	assert.NotEmpty(t, d.Instances())
}

func TestPlacement_Bunching(t *testing.T) {
	h := rockHost(t)
	d := prepared(t, h, geom.Vec3{1024, 1024, 64}, distArgs("randseed", "31", "max_entities", "30", "combine", "0"),
		h.template("rock", "atdm:rock", geom.Vec3{8, 8, 8}, "seed_bunching", "1"),
	)
	insts := d.Instances()
	require.Greater(t, len(insts), 1)

	c := d.Classes()[0]
	radius := math.Sqrt(geom.LenSqrXY(c.Size)) + 2*c.Spacing

	// every later instance is placed on a ring around an earlier one
	for j := 1; j < len(insts); j++ {
		near := false
		for i := range j {
			dist := math.Sqrt(geom.LenSqrXY(insts[j].Origin.Sub(insts[i].Origin)))
			if dist >= 2*radius-1e-6 && dist <= 2*radius+radius/3+1e-6 {
				near = true
				break
			}
		}
		assert.True(t, near, "instance %d at %v is not bunched", j, insts[j].Origin)
	}
}

func TestPlacement_InhibitorFalloff(t *testing.T) {
	h := rockHost(t)
	inhibitor := h.template("clearing", InhibitorClass, geom.Vec3{256, 256, 64},
		"origin", "0 0 0",
		"falloff", "cutoff",
	)
	d := prepared(t, h, geom.Vec3{512, 512, 64}, distArgs("randseed", "37", "max_entities", "300", "combine", "0"),
		h.template("rock", "atdm:rock", geom.Vec3{4, 4, 4}),
		inhibitor,
	)

	require.Len(t, d.Inhibitors(), 1)
	inh := d.Inhibitors()[0]
	assert.Equal(t, model.FalloffCutoff, inh.Falloff)

	inCorners := 0
	for _, inst := range d.Instances() {
		x := 2 * inst.Origin.X() / inh.Size.X()
		y := 2 * inst.Origin.Y() / inh.Size.Y()
		assert.GreaterOrEqual(t, x*x+y*y, 1.0-1e-9, "rock at %v inside the inhibitor disk", inst.Origin)
		if inh.Box.Contains(inst.Origin) {
			inCorners++
		}
	}
	// the box corners outside the disk stay open
	assert.Positive(t, inCorners)
}

func TestPlacer_SpacingWithoutCollision(t *testing.T) {
	h := rockHost(t)
	d := newTestDistribution(t, h, geom.Vec3{256, 256, 64}, distArgs())
	rock := geom.BoundsFromSize(geom.Vec3{8, 8, 8})

	p := &placer{d: d}
	placed := geom.BoxFromBounds(rock, geom.Vec3{}, geom.Identity())
	p.boxes = append(p.boxes, placed)
	p.bounds = append(p.bounds, placed.Bounds())

	// 4 units of gap between the two boxes
	near := geom.BoxFromBounds(rock, geom.Vec3{12, 0, 0}, geom.Identity())
	c := &model.PlacementClass{Collide: model.CollideNone}
	assert.False(t, p.collides(c, near))

	c.Spacing = 8
	assert.True(t, p.collides(c, near))

	c.Spacing = 0
	p.spacing = 8
	assert.True(t, p.collides(c, near))

	p.spacing = 2
	assert.False(t, p.collides(c, near))
}

func TestSpawnClassSkin(t *testing.T) {
	h := rockHost(t)
	const skins = "moss,snow,'',ash,clay,dust,sand,soot"

	skinOf := func(seed int32) string {
		d := newTestDistribution(t, h, geom.Vec3{64, 64, 64}, distArgs("spawn_class", "atdm:rock", "spawn_skin", skins))
		d.rnd.SetSeed(seed)
		srcs := d.spawnClassSources()
		require.Len(t, srcs, 1)
		return srcs[0].Args.GetString("skin", "")
	}

	picked := make(map[string]bool)
	for seed := int32(1); seed <= 40; seed++ {
		skin := skinOf(seed)
		assert.Equal(t, skin, skinOf(seed), "seed %d", seed)
		picked[skin] = true
	}
	assert.Greater(t, len(picked), 1)
}

func TestRandomPart(t *testing.T) {
	r := rng.New()
	r.SetSeed(5)
	assert.Empty(t, randomPart(r, ""))
	assert.Empty(t, randomPart(r, "''"))
	assert.Equal(t, "moss", randomPart(r, " moss "))

	for range 50 {
		assert.Contains(t, []string{"a", "b", "c"}, randomPart(r, "a,b,c"))
	}
}
