package imagemap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeGray(t *testing.T, dir, name string, w, h int, fill func(x, y int) uint8) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetGray(x, y, color.Gray{Y: fill(x, y)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestManager_Load(t *testing.T) {
	dir := t.TempDir()
	writeGray(t, dir, "half.png", 4, 4, func(x, y int) uint8 {
		if x < 2 {
			return 0
		}
		return 255
	})

	mgr := NewManager(dir)
	id, err := mgr.Load("half.png")
	require.NoError(t, err)

	again, err := mgr.Load("half.png")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, mgr.Count())

	m, ok := mgr.Map(id)
	require.True(t, ok)
	assert.Equal(t, 1, m.Bpp)
	assert.InDelta(t, 255.0*8/(16*256), m.Density(), 1e-9)
	assert.Equal(t, uint8(0), m.At(0.1, 0.5))
	assert.Equal(t, uint8(255), m.At(0.9, 0.5))

	mgr.Unregister(id)
	_, ok = mgr.Map(id)
	assert.False(t, ok)
}

func TestManager_LoadUnreadable(t *testing.T) {
	mgr := NewManager(t.TempDir())

	_, err := mgr.Load("missing.png")
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecode_BMPColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))

	m, err := Decode("color.bmp", &buf)
	require.NoError(t, err)
	assert.NotEqual(t, 1, m.Bpp)
}

func TestMap_ResampledDensity(t *testing.T) {
	m := FromGray("stripes", 4, 1, []byte{0, 0, 255, 255})

	assert.InDelta(t, m.Density(), m.ResampledDensity(1, 1, 0, 0), 1e-9)
	// shifting by a full period keeps the mean
	assert.InDelta(t, m.Density(), m.ResampledDensity(1, 1, 1, 0), 1e-9)
	// doubling the scale samples columns 0 and 2 twice each
	assert.InDelta(t, 510.0/(4*256), m.ResampledDensity(2, 1, 0, 0), 1e-9)
}

func TestWrap(t *testing.T) {
	assert.InDelta(t, 0.25, Wrap(1.25), 1e-9)
	assert.InDelta(t, 0.75, Wrap(-0.25), 1e-9)
	assert.InDelta(t, 0, Wrap(1), 1e-9)
}
