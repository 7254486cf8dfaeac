// Package export renders simulation frames and recorded orbits as SVG.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const background = "#0a0a0a"

// palette colours tracks that carry no colour of their own.
var palette = []string{"#00ff00", "#0066ff", "#ff4500", "#ffa500", "#e0e0ff", "#88f2f2"}

// Track is one recorded orbit.
type Track struct {
	ID     int
	Points []r2.Vec
	Color  string
}

func header(sb *strings.Builder, world r2.Box, width int) {
	w := world.Max.X - world.Min.X
	h := world.Max.Y - world.Min.Y
	height := int(float64(width) * h / w)
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%.1f %.1f %.1f %.1f">
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, width, height, world.Min.X, world.Min.Y, w, h, world.Min.X, world.Min.Y, w, h, background)
}

func path(sb *strings.Builder, pts []r2.Vec, stroke string, opacity float64) {
	if len(pts) < 2 {
		return
	}
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-opacity="%.2f" stroke-width="1.5" d="M%.1f,%.1f`, stroke, opacity, pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		fmt.Fprintf(sb, " L%.1f,%.1f", p.X, p.Y)
	}
	sb.WriteString("\"/>\n")
}

func circle(sb *strings.Builder, p r2.Vec, r float64, fill colorful.Color) {
	fmt.Fprintf(sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, p.X, p.Y, max(r, 1), fill.Clamped().Hex())
}

// FrameSVG draws the attractor, every body and its trajectory preview.
// World coordinates are used as-is; y grows downward as on screen.
func FrameSVG(f sim.Frame, world r2.Box, width int) string {
	if width <= 0 || world.Max.X <= world.Min.X || world.Max.Y <= world.Min.Y {
		return ""
	}

	var sb strings.Builder
	header(&sb, world, width)
	for _, b := range f.Bodies {
		path(&sb, b.Preview, b.Color.Clamped().Hex(), 0.35)
	}
	circle(&sb, f.Attractor.Pos, f.Attractor.Radius, f.Attractor.Color)
	for _, b := range f.Bodies {
		circle(&sb, b.Pos, b.Radius, b.Color)
	}
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#808080" font-family="monospace" font-size="14">t=%.2fs  %s</text>
`, world.Min.X+8, world.Min.Y+20, f.Time, f.Mode)
	sb.WriteString("</svg>\n")
	return sb.String()
}

// TracksSVG draws recorded orbits around an optional centre mark.
func TracksSVG(tracks []Track, center *r2.Vec, world r2.Box, width int) string {
	if width <= 0 || world.Max.X <= world.Min.X || world.Max.Y <= world.Min.Y {
		return ""
	}

	var sb strings.Builder
	header(&sb, world, width)
	for i, t := range tracks {
		stroke := t.Color
		if stroke == "" {
			stroke = palette[i%len(palette)]
		}
		path(&sb, t.Points, stroke, 1)
	}
	if center != nil {
		c, _ := colorful.Hex("#ffd700")
		circle(&sb, *center, 6, c)
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteFile writes svg to path, or to w when path is "-".
func WriteFile(path string, w io.Writer, svg string) error {
	if svg == "" {
		return fmt.Errorf("export: nothing to draw")
	}
	if path == "-" {
		_, err := io.WriteString(w, svg)
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
