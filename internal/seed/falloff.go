package seed

import (
	"math"
	"strings"

	"github.com/udisondev/seed/internal/model"
	"github.com/udisondev/seed/internal/spawnargs"
)

// parseFalloff interprets a falloff name. Power and root read their exponent from
// the chain and clamp it to at least 2.
func parseFalloff(name string, chain spawnargs.Chain, defaultFactor float64, diag *diagnostics) (model.Falloff, float64) {
	var f model.Falloff
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		f = model.FalloffNone
	case "cutoff":
		f = model.FalloffCutoff
	case "power":
		f = model.FalloffPower
	case "root":
		f = model.FalloffRoot
	case "linear":
		f = model.FalloffLinear
	case "func", "function":
		f = model.FalloffFunc
	default:
		diag.warn("falloff", "unknown falloff %q, using none", name)
		return model.FalloffNone, 0
	}

	if f != model.FalloffPower && f != model.FalloffRoot {
		return f, 0
	}
	factor := chain.Float("seed_func_a", "func_a", defaultFactor)
	if factor < 2 {
		diag.warn("func_a", "%s falloff factor %g must be at least 2", f, factor)
		factor = 2
	}
	return f, factor
}

// diskProbability is the threshold a uniform draw must exceed for a disk sample at
// squared radius d. Cutoff has no threshold.
func diskProbability(f model.Falloff, factor, d float64) float64 {
	switch f {
	case model.FalloffCutoff:
		return 0
	case model.FalloffLinear:
		return d
	case model.FalloffRoot:
		return math.Pow(d, 1/factor)
	}
	return math.Pow(d, factor)
}
