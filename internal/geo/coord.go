package geo

import "math"

// CellX converts a map X coordinate to a column of the heightfield.
func (t *terrain) CellX(x float64) int {
	return int(math.Floor((x - t.origin.X()) / t.cellSize))
}

// CellY converts a map Y coordinate to a row of the heightfield.
func (t *terrain) CellY(y float64) int {
	return int(math.Floor((y - t.origin.Y()) / t.cellSize))
}

// WorldX returns the map X coordinate of the centre of column cx.
func (t *terrain) WorldX(cx int) float64 {
	return t.origin.X() + (float64(cx)+0.5)*t.cellSize
}

// WorldY returns the map Y coordinate of the centre of row cy.
func (t *terrain) WorldY(cy int) float64 {
	return t.origin.Y() + (float64(cy)+0.5)*t.cellSize
}

func (t *terrain) valid(cx, cy int) bool {
	return cx >= 0 && cx < t.width && cy >= 0 && cy < t.height
}

func (t *terrain) index(cx, cy int) int {
	return cy*t.width + cx
}
