package geo

// Heightfield defaults.
const (
	// DefaultCellSize is the edge length of one terrain cell in map units.
	DefaultCellSize = 32

	// DefaultHeightScale maps a full-white heightmap pixel to this height.
	DefaultHeightScale = 512

	// maxSlopeDegrees bounds the tilt handed back by traces.
	maxSlopeDegrees = 60
)
