package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Viewport maps the simulation world onto a canvas of cols x rows cells.
// Both world and canvas have y growing downward.
type Viewport struct {
	World      r2.Box
	Cols, Rows int
}

func (v Viewport) scale() (sx, sy float64) {
	w := v.World.Max.X - v.World.Min.X
	h := v.World.Max.Y - v.World.Min.Y
	return float64(v.Cols*2) / w, float64(v.Rows*4) / h
}

// ToDots maps a world position to canvas sub-pixel coordinates.
func (v Viewport) ToDots(p r2.Vec) (int, int) {
	sx, sy := v.scale()
	return int(math.Floor((p.X - v.World.Min.X) * sx)), int(math.Floor((p.Y - v.World.Min.Y) * sy))
}

// ToWorld maps a terminal cell to the world position of its centre.
func (v Viewport) ToWorld(col, row int) r2.Vec {
	sx, sy := v.scale()
	return r2.Vec{
		X: v.World.Min.X + (float64(col)+0.5)*2/sx,
		Y: v.World.Min.Y + (float64(row)+0.5)*4/sy,
	}
}

// CellBox is the world rectangle covered by a run of cells.
func (v Viewport) CellBox(col, row, cols, rows int) r2.Box {
	sx, sy := v.scale()
	return r2.Box{
		Min: r2.Vec{X: v.World.Min.X + float64(col)*2/sx, Y: v.World.Min.Y + float64(row)*4/sy},
		Max: r2.Vec{X: v.World.Min.X + float64(col+cols)*2/sx, Y: v.World.Min.Y + float64(row+rows)*4/sy},
	}
}

// CellSize is the larger world extent of one cell, used as a hover tolerance.
func (v Viewport) CellSize() float64 {
	sx, sy := v.scale()
	return math.Max(2/sx, 4/sy)
}

// DotRadius converts a world radius to whole dots, never less than one.
func (v Viewport) DotRadius(r float64) int {
	sx, _ := v.scale()
	return max(1, int(math.Round(r*sx)))
}
