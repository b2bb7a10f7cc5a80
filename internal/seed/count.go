package seed

// LODBiasScale maps the quality setting onto a density factor. The extreme menu
// values are compressed: 0.5 gives 0.7, 0.75 gives 0.9, 1.5/2/3 give 1.125/1.25/1.4.
func LODBiasScale(bias float64) float64 {
	switch {
	case bias < 0.7:
		return bias * 1.4
	case bias < 0.8:
		return bias * 1.2
	case bias > 2:
		return 0.9 + (bias-1)/4
	case bias > 1:
		return 1 + (bias-1)/4
	}
	return bias
}

// ComputeEntityCount sets the per-class and total target counts, either by sharing
// max_entities out by score or from the covered area and each class's footprint.
func (d *Distribution) ComputeEntityCount() {
	scale := LODBiasScale(d.currentBias())

	density := d.args.GetFloat("density", 1)
	if d.args.GetBool("lod_scale_density", true) {
		density *= scale
	}
	density = max(density, 0.00001)
	area := (d.size.X() + 1) * (d.size.Y() + 1) * density

	maxEntities := d.args.GetInt("max_entities", 0)
	scoreSum := 0
	if maxEntities > 0 {
		if float64(maxEntities) > d.args.GetFloat("lod_scaling_limit", 10) {
			maxEntities = int(float64(maxEntities) * scale)
		}
		// pseudo and watch classes have score 0
		for _, c := range d.classes {
			scoreSum += c.Score
		}
	}

	total := 0
	for _, c := range d.classes {
		if c.Pseudo || c.Watch {
			continue
		}

		n := 0
		switch {
		case maxEntities > 0 && scoreSum > 0:
			// at least one of each class, so "one out of four classes" picks fairly
			n = max(1, maxEntities*c.Score/scoreSum)
		case maxEntities <= 0 && c.AvgSize > 0:
			n = int(area / c.AvgSize)
		}
		if c.MaxEntities > 0 && n > c.MaxEntities {
			n = c.MaxEntities
		}
		c.NumEntities = n
		total += n
	}

	if maxEntities > 0 {
		total = maxEntities
	}
	d.numEntities = total
	d.log.Debug("entity count", "count", total, "bias", scale)
}
