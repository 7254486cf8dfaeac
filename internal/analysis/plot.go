package analysis

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

var trackGlyphs = []rune{'•', '○', '◆', '◇', '▲', '△', '■', '□'}

// TrackToASCII plots tracks in screen orientation (y grows downward). Each
// track gets its own glyph and center, when non-nil, is marked with '*'.
func TrackToASCII(tracks [][]r2.Vec, center *r2.Vec, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}

	bounds := r2.Box{
		Min: r2.Vec{X: math.Inf(1), Y: math.Inf(1)},
		Max: r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	grow := func(p r2.Vec) {
		bounds.Min.X = math.Min(bounds.Min.X, p.X)
		bounds.Min.Y = math.Min(bounds.Min.Y, p.Y)
		bounds.Max.X = math.Max(bounds.Max.X, p.X)
		bounds.Max.Y = math.Max(bounds.Max.Y, p.Y)
	}
	n := 0
	for _, tr := range tracks {
		for _, p := range tr {
			grow(p)
			n++
		}
	}
	if n == 0 {
		return ""
	}
	if center != nil {
		grow(*center)
	}

	rangeX := bounds.Max.X - bounds.Min.X
	rangeY := bounds.Max.Y - bounds.Min.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	bounds.Min.X -= rangeX * 0.05
	bounds.Min.Y -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	plot := func(p r2.Vec, r rune) {
		col := int((p.X - bounds.Min.X) / rangeX * float64(width-1))
		row := int((p.Y - bounds.Min.Y) / rangeY * float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = r
		}
	}

	for i, tr := range tracks {
		glyph := trackGlyphs[i%len(trackGlyphs)]
		for _, p := range tr {
			plot(p, glyph)
		}
	}
	if center != nil {
		plot(*center, '*')
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
