package world

import (
	"context"
	"log/slog"
	"time"
)

// defaultPVSMaxAge is how long a PVS computed on demand stays valid.
const defaultPVSMaxAge = 200 * time.Millisecond

// VisibilityManager refreshes the viewer's PVS in the background so that
// distance checks never pay for recomputing it.
type VisibilityManager struct {
	world    *World
	interval time.Duration
	maxAge   time.Duration
}

// NewVisibilityManager creates a new visibility manager.
// interval: how often to refresh (recommended: 100ms)
// maxAge: cache considered stale after this duration (recommended: 200ms)
func NewVisibilityManager(world *World, interval, maxAge time.Duration) *VisibilityManager {
	return &VisibilityManager{
		world:    world,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start refreshes the PVS until ctx is canceled.
func (vm *VisibilityManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(vm.interval)
	defer ticker.Stop()

	slog.Info("visibility manager started", "interval", vm.interval, "maxAge", vm.maxAge)

	for {
		select {
		case <-ctx.Done():
			slog.Info("visibility manager stopping")
			return ctx.Err()
		case <-ticker.C:
			vm.Update()
		}
	}
}

// Update recomputes the PVS when the viewer changed region or the cache went
// stale. It reports whether anything was recomputed.
func (vm *VisibilityManager) Update() bool {
	origin := vm.world.viewer.Origin()
	rx, ry := CoordToRegionIndex(origin.X(), origin.Y())
	if c := vm.world.pvs.Load(); c != nil && !c.isStale(vm.maxAge) && c.isValidForRegion(rx, ry) {
		return false
	}

	c := vm.world.rebuildPVS(rx, ry)
	slog.Debug("pvs updated", "rx", rx, "ry", ry, "areas", len(c.areas))
	return true
}
