package world

import "math"

// Grid layout of the visibility regions.
const (
	// ShiftBy - shift by N bits for 2^N units per region (2^11 = 2048)
	ShiftBy = 11

	// World boundaries (map units)
	WorldMin = -131072
	WorldMax = 131072

	// Offset for array indexing: abs(WorldMin >> ShiftBy) = 64
	Offset = 64

	// Regions per axis: (WorldMax >> ShiftBy) + Offset = 128
	Regions = 128

	// RegionSize in map units
	RegionSize = 1 << ShiftBy
)

// CoordToRegionIndex converts a map position to region indices.
// Formula: (floor(coord) >> ShiftBy) + Offset
func CoordToRegionIndex(x, y float64) (rx, ry int32) {
	rx = (int32(math.Floor(x)) >> ShiftBy) + Offset
	ry = (int32(math.Floor(y)) >> ShiftBy) + Offset
	return rx, ry
}

// IsValidRegionIndex checks if region index is within the grid.
func IsValidRegionIndex(rx, ry int32) bool {
	return rx >= 0 && rx < Regions && ry >= 0 && ry < Regions
}

// RegionID flattens region indices into the area number handed to distributions.
func RegionID(rx, ry int32) int {
	return int(rx)*Regions + int(ry)
}

// RegionIndex is the inverse of RegionID.
func RegionIndex(id int) (rx, ry int32) {
	return int32(id / Regions), int32(id % Regions)
}

func inWorld(v float64) bool {
	return v >= WorldMin && v < WorldMax
}
