package seed

import (
	"math"
	"time"

	"github.com/udisondev/seed/internal/geom"
	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

const (
	// spawnMargin keeps this many live object slots free for the host.
	spawnMargin = 100
	// maxSkippedChecks is how many distance checks in a row may be skipped while
	// the distribution is outside the viewer's visibility set.
	maxSkippedChecks = 20
	// biasTolerance is the bias change that triggers a recount.
	biasTolerance = 0.1
)

// Think runs one scheduling step. Instances skipped because the host is full are
// tried again on the next distance check, in table order.
func (d *Distribution) Think(now time.Time) {
	if !d.active || d.retired || d.numEntities < 0 || d.waitForTrigger {
		return
	}

	if !d.prepared {
		if err := d.Prepare(now); err != nil {
			d.log.Error("preparing distribution failed", "error", err)
		}
		if d.retired || d.numEntities < 0 {
			return
		}
	}

	if bias := d.currentBias(); math.Abs(bias-d.lodBias) > biasTolerance {
		d.rebias(bias)
	}

	if d.restoreLOD {
		d.reattachComposites()
		d.restoreLOD = false
	}

	if now.Sub(d.distCheckStamp) <= d.distCheckInterval {
		return
	}
	d.distCheckStamp = now

	if d.thinkCounter < maxSkippedChecks && d.host.Visibility != nil && !d.host.Visibility.InCurrentPVS(d.areas) {
		d.thinkCounter++
		return
	}
	d.thinkCounter = 0

	viewer := d.viewerOrigin()
	bias := d.currentBias()
	spawned, culled := 0, 0
	for i := range d.instances {
		inst := &d.instances[i]
		c := d.classes[inst.Class]
		distSq := lodDistance(c.LOD, viewer.Sub(inst.Origin), bias)

		switch {
		case !inst.Exists() && (c.SpawnDistSq == 0 || distSq < c.SpawnDistSq):
			// composites run their own level of detail, everything else is managed here
			if d.spawn(i, !c.Pseudo) {
				spawned++
			}
		case inst.Exists() && c.CullDistSq > 0 && distSq > c.CullDistSq:
			if d.cull(i) {
				culled++
			}
		}
	}

	if spawned > 0 || culled > 0 {
		d.log.Debug("distance check",
			"spawned", spawned,
			"culled", culled,
			"existing", d.numExisting,
			"composites", d.numComposites)
	}
}

// lodDistance is the squared viewer distance scaled by the quality bias, projected
// onto the XY plane when the level of detail asks for it.
func lodDistance(lod *model.LODData, delta geom.Vec3, bias float64) float64 {
	if lod != nil && lod.DistCheckXYOnly {
		delta[2] = 0
	}
	if bias <= 0 {
		bias = 1
	}
	return delta.LenSqr() / (bias * bias)
}

// rebias recounts after a quality change and, if the count moved, culls everything
// and places again from the root seed.
func (d *Distribution) rebias(bias float64) {
	d.log.Info("quality setting changed, recomputing", "from", d.lodBias, "to", bias)
	before := d.numEntities
	d.ComputeEntityCount()
	if before != d.numEntities {
		d.CullAll()
		d.rnd.Rewind()
		d.distribute()
		d.log.Info("entity count changed", "from", before, "to", d.numEntities, "instances", len(d.instances))
		if len(d.instances) == 0 {
			d.numEntities = -1
		}
	}
	d.lodBias = bias
}

// reattachComposites gives composite live objects that survived a restore their
// offset data again.
func (d *Distribution) reattachComposites() {
	n := 0
	for i := range d.instances {
		inst := &d.instances[i]
		c := d.classes[inst.Class]
		if !c.Pseudo || !inst.Exists() {
			continue
		}
		if err := d.host.Spawner.AttachComposite(inst.Entity, compositeOf(c)); err != nil {
			d.log.Warn("reattaching composite failed", "entity", inst.Entity, "error", err)
			continue
		}
		n++
	}
	d.log.Debug("composites reattached", "count", n)
}

// spawn creates the live object of instance idx. It returns false when the host is
// full or the definition is gone; the instance then stays hidden.
func (d *Distribution) spawn(idx int, managed bool) bool {
	inst := &d.instances[idx]
	c := d.classes[inst.Class]
	sp := d.host.Spawner

	if sp.NumEntities() > sp.MaxEntities()-spawnMargin {
		return false
	}
	if _, ok := d.host.Defs.Lookup(c.Classname); !ok {
		return false
	}

	args := spawnargs.New()
	args.Set("classname", c.Classname)
	args.Set("model", c.ModelName)
	args.Set("origin", spawnargs.FormatVector(inst.Origin))
	args.Set("skin", d.skins.Name(inst.Skin))
	args.Set("random_skin", "")
	args.Set("_color", spawnargs.FormatVector(geom.UnpackColor(inst.Color)))
	args.Set("floor", "0")
	if managed {
		args.Set("dist_check_period", "0")
	}

	id, err := sp.Spawn(args)
	if err != nil {
		if d.debug > 0 {
			d.log.Debug("spawn failed", "instance", idx, "classname", c.Classname, "error", err)
		}
		return false
	}
	sp.SetAxis(id, inst.Axis())

	if err := strategyFor(inst.Kind).afterSpawn(d, inst, c, id); err != nil {
		d.log.Warn("finishing spawned object failed", "instance", idx, "kind", inst.Kind, "error", err)
	}
	inst.MarkSpawned(id)
	d.numExisting++
	return true
}

// cull removes the live object of instance idx after copying its transform back,
// so objects that moved reappear where they were left.
func (d *Distribution) cull(idx int) bool {
	inst := &d.instances[idx]
	if !inst.Exists() {
		return false
	}
	sp := d.host.Spawner

	if origin, axis, ok := sp.Transform(inst.Entity); ok {
		inst.Origin = origin
		inst.Angles = geom.AnglesFromMat3(axis)
	} else {
		d.log.Debug("culled object is gone", "instance", idx, "entity", inst.Entity)
	}

	strategyFor(inst.Kind).afterCull(d, inst)
	sp.Remove(inst.Entity)
	inst.MarkHidden()
	d.numExisting--
	return true
}

// CullAll removes every live object the distribution controls.
func (d *Distribution) CullAll() {
	for i := range d.instances {
		d.cull(i)
	}
	d.numComposites = 0
	d.numExisting = 0
}
