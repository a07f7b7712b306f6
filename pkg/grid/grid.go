package grid

// GetGridCoords converts a row-major cell index into x, y coordinates.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Wrap reduces v into [0, n), wrapping negative values around the far edge.
func Wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
