package core

// MousePosition is the cursor position normalized by the window size.
type MousePosition struct {
	X float32
	Y float32
}

// NormalizeCursor divides the cursor position by the window dimensions.
// A degenerate window leaves the axis at zero.
func NormalizeCursor(x, y float64, width, height int) MousePosition {
	pos := MousePosition{}
	if width > 0 {
		pos.X = float32(x / float64(width))
	}
	if height > 0 {
		pos.Y = float32(y / float64(height))
	}
	return pos
}
