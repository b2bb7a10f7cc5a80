package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// SnapshotStore persists distribution snapshots by name.
type SnapshotStore interface {
	Save(ctx context.Context, s *Snapshot) error
	// Load returns ErrNoSnapshot when nothing is stored under name.
	Load(ctx context.Context, name string) (*Snapshot, error)
}

// Flusher is implemented by spawn services that defer removals to the end of a tick.
type Flusher interface {
	Flush()
}

// storeConcurrency bounds parallel snapshot reads and writes.
const storeConcurrency = 4

// Manager runs the scheduling of every distribution of a map. Distributions share
// one host and are stepped one after another.
type Manager struct {
	mu            sync.Mutex
	distributions []*Distribution
	byName        map[string]*Distribution
	host          Host
	interval      time.Duration
}

// NewManager creates a manager stepping distributions every interval.
func NewManager(host Host, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Manager{
		byName:   make(map[string]*Distribution),
		host:     host,
		interval: interval,
	}
}

// Add registers d. Names must be unique.
func (m *Manager) Add(d *Distribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[d.Name()]; ok {
		return fmt.Errorf("adding %s: %w", d.Name(), ErrDuplicate)
	}
	m.distributions = append(m.distributions, d)
	m.byName[d.Name()] = d
	return nil
}

// Get returns the distribution called name.
func (m *Manager) Get(name string) (*Distribution, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byName[name]
	return d, ok
}

// Len returns the number of registered distributions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.distributions)
}

// PrepareAll computes the placement of every distribution that does not wait for
// a trigger. Failing distributions are logged and reported together; a canceled
// ctx stops before the next distribution.
func (m *Manager) PrepareAll(ctx context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, d := range m.distributions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Prepared() || d.waitForTrigger {
			continue
		}
		if err := d.Prepare(now); err != nil {
			errs = append(errs, err)
		}
	}
	slog.Info("distributions prepared", "count", len(m.distributions), "failed", len(errs))
	return errors.Join(errs...)
}

// Tick steps every distribution once and flushes deferred removals.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.distributions {
		d.Think(now)
	}
	if f, ok := m.host.Spawner.(Flusher); ok {
		f.Flush()
	}
}

// Start steps the distributions until ctx is canceled.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	slog.Info("seed manager started", "interval", m.interval, "distributions", m.Len())

	for {
		select {
		case <-ctx.Done():
			slog.Info("seed manager stopping")
			return ctx.Err()
		case now := <-ticker.C:
			m.Tick(now)
		}
	}
}

// SaveAll stores a snapshot of every distribution.
func (m *Manager) SaveAll(ctx context.Context, store SnapshotStore) error {
	m.mu.Lock()
	snapshots := make([]*Snapshot, 0, len(m.distributions))
	for _, d := range m.distributions {
		snapshots = append(snapshots, d.Save())
	}
	m.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(storeConcurrency)
	for _, s := range snapshots {
		g.Go(func() error {
			if err := store.Save(ctx, s); err != nil {
				return fmt.Errorf("saving %s: %w", s.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("distributions saved", "count", len(snapshots))
	return nil
}

// RestoreAll restores every distribution that has a stored snapshot. Distributions
// without one keep their state.
func (m *Manager) RestoreAll(ctx context.Context, store SnapshotStore) error {
	m.mu.Lock()
	names := make([]string, len(m.distributions))
	for i, d := range m.distributions {
		names[i] = d.Name()
	}
	m.mu.Unlock()

	snapshots := make([]*Snapshot, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(storeConcurrency)
	for i, name := range names {
		g.Go(func() error {
			s, err := store.Load(gctx, name)
			if errors.Is(err, ErrNoSnapshot) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", name, err)
			}
			snapshots[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for i, s := range snapshots {
		if s == nil {
			continue
		}
		if err := m.byName[names[i]].Restore(s); err != nil {
			return err
		}
		restored++
	}
	slog.Info("distributions restored", "count", restored, "total", len(names))
	return nil
}
