package seed

import (
	"github.com/google/uuid"

	"github.com/udisondev/seed/internal/model"
)

// Arena owns the collision shapes synthesized for composite classes during one
// generation of a distribution. A generation ends when the distribution is placed
// again; Release frees everything the arena holds at once.
type Arena struct {
	id      uuid.UUID
	shapes  []model.ShapeHandle
	proxies []*model.CollisionProxy
}

// NewArena starts a new generation.
func NewArena() *Arena {
	return &Arena{id: uuid.New()}
}

// ID identifies the generation.
func (a *Arena) ID() uuid.UUID { return a.id }

// TrackShape hands ownership of s to the arena.
func (a *Arena) TrackShape(s model.ShapeHandle) {
	if s != 0 {
		a.shapes = append(a.shapes, s)
	}
}

// TrackProxy records a composite collision proxy built in this generation.
func (a *Arena) TrackProxy(p *model.CollisionProxy) {
	a.proxies = append(a.proxies, p)
}

// Shapes returns the number of shapes held.
func (a *Arena) Shapes() int { return len(a.shapes) }

// Proxies returns the number of collision proxies held.
func (a *Arena) Proxies() int { return len(a.proxies) }

// Release frees every shape and forgets the proxies.
func (a *Arena) Release(coll CollisionService) {
	if coll != nil {
		for _, s := range a.shapes {
			coll.Free(s)
		}
	}
	a.shapes = nil
	a.proxies = nil
}

// restoredArena continues generation id after a restore.
func restoredArena(id uuid.UUID) *Arena {
	return &Arena{id: id}
}
