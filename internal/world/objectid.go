package world

import (
	"sync/atomic"

	"github.com/udisondev/seed/internal/model"
)

// IDGenerator hands out entity ids. Zero is never returned; it means "no object".
type IDGenerator struct {
	next atomic.Uint32
}

// NewIDGenerator creates a generator starting at 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next generates the next unique id.
// Thread-safe via atomic increment.
func (g *IDGenerator) Next() model.EntityID {
	return model.EntityID(g.next.Add(1))
}
