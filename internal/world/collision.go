package world

import (
	"errors"
	"sync"

	"github.com/udisondev/seed/internal/model"
)

// ErrUnknownModel is returned for handles the catalog does not hold.
var ErrUnknownModel = errors.New("unknown model")

// Shapes holds the collision shapes loaded for the models of a catalog.
type Shapes struct {
	catalog *ModelCatalog

	mu   sync.Mutex
	live map[model.ShapeHandle]string
	next model.ShapeHandle
}

// NewShapes creates a shape table resolving names against catalog.
func NewShapes(catalog *ModelCatalog) *Shapes {
	return &Shapes{catalog: catalog, live: make(map[model.ShapeHandle]string)}
}

// Load creates the collision shape of a registered model.
func (s *Shapes) Load(modelName string) (model.ShapeHandle, bool) {
	if _, ok := s.catalog.Find(modelName); !ok {
		return 0, false
	}
	return s.add(modelName), true
}

// Clone copies a live shape. Cloning an unknown shape yields no shape.
func (s *Shapes) Clone(h model.ShapeHandle) model.ShapeHandle {
	s.mu.Lock()
	name, ok := s.live[h]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	return s.add(name)
}

// Free releases a shape.
func (s *Shapes) Free(h model.ShapeHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, h)
}

// Model returns the model a shape was loaded for.
func (s *Shapes) Model(h model.ShapeHandle) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.live[h]
	return name, ok
}

// Live returns the number of shapes not yet freed.
func (s *Shapes) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *Shapes) add(name string) model.ShapeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.live[s.next] = name
	return s.next
}
