package spawn

import (
	"sync"

	"github.com/udisondev/seed/internal/model"
)

// removalQueue holds objects waiting to be destroyed at the end of a tick, in the
// order they were removed. Removing an object twice queues it once.
type removalQueue struct {
	mu     sync.Mutex
	order  []model.EntityID
	queued map[model.EntityID]struct{}
}

func newRemovalQueue() *removalQueue {
	return &removalQueue{queued: make(map[model.EntityID]struct{})}
}

func (q *removalQueue) push(id model.EntityID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.queued[id]; ok {
		return
	}
	q.queued[id] = struct{}{}
	q.order = append(q.order, id)
}

// drain empties the queue and returns its contents.
func (q *removalQueue) drain() []model.EntityID {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := q.order
	q.order = nil
	clear(q.queued)
	return ids
}

func (q *removalQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
