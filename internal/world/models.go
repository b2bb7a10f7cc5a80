package world

import (
	"fmt"
	"sync"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
)

// DefaultMaxParts is the composite capacity of models registered without one.
const DefaultMaxParts = 64

type modelEntry struct {
	name     string
	bounds   geom.Bounds
	maxParts int
	// duplicate entries are owned by one object and freed with it
	duplicate bool
}

// ModelCatalog is the table of visuals known to the world. Registered models live
// for the whole session; duplicates are freed by their owner.
type ModelCatalog struct {
	mu      sync.RWMutex
	byName  map[string]model.ModelHandle
	entries map[model.ModelHandle]*modelEntry
	next    model.ModelHandle
}

// NewModelCatalog creates an empty catalog.
func NewModelCatalog() *ModelCatalog {
	return &ModelCatalog{
		byName:  make(map[string]model.ModelHandle),
		entries: make(map[model.ModelHandle]*modelEntry),
	}
}

// RegisterModel adds a named model, replacing the bounds of an existing one.
func (c *ModelCatalog) RegisterModel(name string, bounds geom.Bounds, maxParts int) model.ModelHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if maxParts <= 0 {
		maxParts = DefaultMaxParts
	}
	if h, ok := c.byName[name]; ok {
		c.entries[h].bounds = bounds
		c.entries[h].maxParts = maxParts
		return h
	}
	c.next++
	h := c.next
	c.byName[name] = h
	c.entries[h] = &modelEntry{name: name, bounds: bounds, maxParts: maxParts}
	return h
}

// Find returns the handle of a registered model.
func (c *ModelCatalog) Find(name string) (model.ModelHandle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.byName[name]
	return h, ok
}

// Name returns the name a handle was registered or duplicated under.
func (c *ModelCatalog) Name(h model.ModelHandle) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[h]
	if !ok {
		return "", false
	}
	return e.name, true
}

// Duplicate creates a private copy of h scaled by scale. A zero scale component
// keeps that extent.
func (c *ModelCatalog) Duplicate(h model.ModelHandle, name string, scale geom.Vec3) (model.ModelHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, ok := c.entries[h]
	if !ok {
		return 0, fmt.Errorf("duplicating model %d: %w", h, ErrUnknownModel)
	}
	for i := range 3 {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}

	c.next++
	dup := c.next
	c.entries[dup] = &modelEntry{
		name: name,
		bounds: geom.Bounds{
			Min: geom.MulElem(src.bounds.Min, scale),
			Max: geom.MulElem(src.bounds.Max, scale),
		},
		maxParts:  src.maxParts,
		duplicate: true,
	}
	return dup, nil
}

// MaxPartCount returns the composite capacity of h.
func (c *ModelCatalog) MaxPartCount(h model.ModelHandle) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[h]; ok {
		return e.maxParts
	}
	return 1
}

// Bounds returns the local bounds of h.
func (c *ModelCatalog) Bounds(h model.ModelHandle) geom.Bounds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[h]; ok {
		return e.bounds
	}
	return geom.Bounds{}
}

// Free releases a duplicate. Registered models are never freed.
func (c *ModelCatalog) Free(h model.ModelHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[h]; ok && e.duplicate {
		delete(c.entries, h)
	}
}

// Len returns the number of live models including duplicates.
func (c *ModelCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
