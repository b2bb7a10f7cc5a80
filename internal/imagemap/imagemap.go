// Package imagemap loads grayscale images used as placement density maps and
// terrain heightfields.
package imagemap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var (
	// ErrUnreadable is returned when an image cannot be opened or decoded.
	ErrUnreadable = errors.New("image map unreadable")
	// ErrBytesPerPixel is returned when a density map is not single channel.
	ErrBytesPerPixel = errors.New("image map must have 1 byte per pixel")
)

// ID identifies a loaded map. Zero is never a valid ID.
type ID int

// Map is a decoded image, stored as one byte per pixel row by row.
type Map struct {
	Name   string
	Width  int
	Height int
	// Bpp is the channel count of the source image.
	Bpp  int
	Data []byte

	density float64
}

// Decode reads an image and converts it to 8-bit luminance.
func Decode(name string, r io.Reader) (*Map, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, err)
	}

	b := img.Bounds()
	m := &Map{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Bpp:    bytesPerPixel(img),
		Data:   make([]byte, b.Dx()*b.Dy()),
	}
	if m.Width == 0 || m.Height == 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrUnreadable, name)
	}

	var sum float64
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			m.Data[y*m.Width+x] = g.Y
			sum += float64(g.Y)
		}
	}
	m.density = sum / float64(m.Width*m.Height*256)
	return m, nil
}

// FromGray builds a map from raw luminance values.
func FromGray(name string, width, height int, data []byte) *Map {
	m := &Map{Name: name, Width: width, Height: height, Bpp: 1, Data: data}
	var sum float64
	for _, v := range data {
		sum += float64(v)
	}
	if width > 0 && height > 0 {
		m.density = sum / float64(width*height*256)
	}
	return m
}

func bytesPerPixel(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Paletted:
		return 1
	case *image.Gray16:
		return 2
	case *image.YCbCr:
		return 3
	}
	return 4
}

// Density returns the mean sample value scaled to [0,1).
func (m *Map) Density() float64 {
	return m.density
}

// ResampledDensity computes the mean value over the image sampled with a scale and a
// fractional offset, wrapping around the edges.
func (m *Map) ResampledDensity(scaleX, scaleY, offsetX, offsetY float64) float64 {
	w, h := float64(m.Width), float64(m.Height)
	xo, yo := w*offsetX, h*offsetY

	var sum float64
	for y := 0; y < m.Height; y++ {
		y1 := int(wrap(float64(y)*scaleY+yo, h))
		for x := 0; x < m.Width; x++ {
			x1 := int(wrap(float64(x)*scaleX+xo, w))
			sum += float64(m.Data[y1*m.Width+x1])
		}
	}
	return sum / (w * h * 256)
}

// At returns the value at fractional coordinates, each in [0,1).
func (m *Map) At(x, y float64) byte {
	px := clampIndex(int(x*float64(m.Width)), m.Width)
	py := clampIndex(int(y*float64(m.Height)), m.Height)
	return m.Data[py*m.Width+px]
}

// Wrap folds v into [0,1).
func Wrap(v float64) float64 {
	return wrap(v, 1)
}

func wrap(v, n float64) float64 {
	r := math.Mod(math.Mod(v, n)+n, n)
	if r >= n {
		return 0
	}
	return r
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Manager caches maps by name and hands out IDs.
type Manager struct {
	mu     sync.RWMutex
	dir    string
	byName map[string]ID
	maps   map[ID]*Map
	nextID ID
}

// NewManager creates a manager that resolves relative names against dir.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:    dir,
		byName: make(map[string]ID),
		maps:   make(map[ID]*Map),
	}
}

// Load returns the ID of the named map, reading it on first use.
func (mgr *Manager) Load(name string) (ID, error) {
	mgr.mu.RLock()
	id, ok := mgr.byName[name]
	mgr.mu.RUnlock()
	if ok {
		return id, nil
	}

	path := name
	if !filepath.IsAbs(path) && mgr.dir != "" {
		path = filepath.Join(mgr.dir, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnreadable, name, err)
	}
	defer f.Close()

	m, err := Decode(name, f)
	if err != nil {
		return 0, err
	}

	id = mgr.Register(m)
	slog.Debug("image map loaded", "name", name, "width", m.Width, "height", m.Height, "bpp", m.Bpp, "density", m.density)
	return id, nil
}

// Register adds an already decoded map, replacing one with the same name.
func (mgr *Manager) Register(m *Map) ID {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if id, ok := mgr.byName[m.Name]; ok {
		mgr.maps[id] = m
		return id
	}
	mgr.nextID++
	mgr.byName[m.Name] = mgr.nextID
	mgr.maps[mgr.nextID] = m
	return mgr.nextID
}

// Map returns the map with the given ID.
func (mgr *Manager) Map(id ID) (*Map, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	m, ok := mgr.maps[id]
	return m, ok
}

// Unregister drops a map from the cache.
func (mgr *Manager) Unregister(id ID) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if m, ok := mgr.maps[id]; ok {
		delete(mgr.byName, m.Name)
		delete(mgr.maps, id)
	}
}

// Count returns the number of cached maps.
func (mgr *Manager) Count() int {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	return len(mgr.maps)
}
