package physics

import "gonum.org/v1/gonum/spatial/r2"

// Probe is the square an input position occupies for hit testing. It is
// anchored at pos (top-left corner, y down) rather than centred on it.
func Probe(pos r2.Vec, size float64) r2.Box {
	return r2.Box{Min: pos, Max: r2.Vec{X: pos.X + size, Y: pos.Y + size}}
}

// Overlaps reports whether a and b share interior area. Boxes that only touch
// along an edge do not overlap.
func Overlaps(a, b r2.Box) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y
}

// Contains reports whether p lies inside b, edges included.
func Contains(b r2.Box, p r2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func square(center r2.Vec, half float64) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: center.X - half, Y: center.Y - half},
		Max: r2.Vec{X: center.X + half, Y: center.Y + half},
	}
}
