package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/imagemap"
	"github.com/udisondev/seed/internal/model"
)

func TestEngineNoTerrain(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.IsLoaded())

	_, ok := e.HeightAt(0, 0)
	assert.False(t, ok)
	assert.Equal(t, model.Surface{}, e.SurfaceAt(0, 0))
	assert.Zero(t, e.SetMaterial(geom.Bounds{Max: geom.Vec3{64, 64, 64}}, model.Surface{Type: model.SurfaceStone}))
}

func TestEngineFlat(t *testing.T) {
	e := NewEngine()
	e.LoadFlat(geom.Vec3{0, 0, 10}, 32, 10, 10)
	require.True(t, e.IsLoaded())

	h, ok := e.HeightAt(100, 100)
	require.True(t, ok)
	assert.Equal(t, 10.0, h)

	_, ok = e.HeightAt(-1, 0)
	assert.False(t, ok, "left of the field")
	_, ok = e.HeightAt(0, 320)
	assert.False(t, ok, "past the last row")
}

func TestEngineFlat_DefaultCellSize(t *testing.T) {
	e := NewEngine()
	e.LoadFlat(geom.Vec3{}, 0, 2, 2)

	_, ok := e.HeightAt(DefaultCellSize*2-1, 0)
	assert.True(t, ok)
	_, ok = e.HeightAt(DefaultCellSize*2, 0)
	assert.False(t, ok)
}

func TestEngineLoadHeightmap(t *testing.T) {
	e := NewEngine()
	m := imagemap.FromGray("hills", 2, 2, []byte{0, 255, 51, 102})
	require.NoError(t, e.LoadHeightmap(m, 32, 255, geom.Vec3{-32, -32, 100}))

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"black", -16, -16, 100},
		{"white", 16, -16, 355},
		{"dark", -16, 16, 151},
		{"grey", 16, 16, 202},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := e.HeightAt(tt.x, tt.y)
			require.True(t, ok)
			assert.InDelta(t, tt.want, h, 1e-9)
		})
	}
}

func TestEngineLoadHeightmap_Empty(t *testing.T) {
	e := NewEngine()
	assert.ErrorIs(t, e.LoadHeightmap(nil, 32, 255, geom.Vec3{}), imagemap.ErrUnreadable)
	assert.ErrorIs(t, e.LoadHeightmap(imagemap.FromGray("none", 0, 0, nil), 32, 255, geom.Vec3{}), imagemap.ErrUnreadable)
	assert.False(t, e.IsLoaded())
}

func TestEngineSetMaterial(t *testing.T) {
	e := NewEngine()
	e.LoadFlat(geom.Vec3{}, 32, 10, 10)

	stone := model.Surface{Type: model.SurfaceStone}
	n := e.SetMaterial(geom.Bounds{Max: geom.Vec3{64, 64, 0}}, stone)
	assert.Equal(t, 4, n, "cell centres at 16 and 48 on both axes")

	assert.Equal(t, "stone", e.SurfaceAt(20, 40).Name())
	assert.Equal(t, "", e.SurfaceAt(100, 100).Name())

	// same surface reuses its palette slot
	n = e.SetMaterial(geom.Bounds{Min: geom.Vec3{64, 64, 0}, Max: geom.Vec3{96, 96, 0}}, stone)
	assert.Equal(t, 1, n)
	assert.Equal(t, "stone", e.SurfaceAt(80, 80).Name())

	grass := model.Surface{Type: model.SurfaceCustom, Description: "grass"}
	e.SetMaterial(geom.Bounds{Min: geom.Vec3{0, 0, 0}, Max: geom.Vec3{32, 32, 0}}, grass)
	assert.Equal(t, grass, e.SurfaceAt(16, 16))
	assert.Equal(t, "stone", e.SurfaceAt(48, 48).Name())
}
