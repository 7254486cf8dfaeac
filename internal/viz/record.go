package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrNoFrames = errors.New("viz: nothing recorded")

// GIFRecorder rasterises frames into an animated GIF. It is a sim.Observer,
// so it can record headless runs as well as the live view.
type GIFRecorder struct {
	view   Viewport
	px, py int
	delay  int
	every  int
	seen   int
	frames []*image.Paletted
}

// NewGIFRecorder renders world at the given pixel width, keeping every Nth
// frame. fps sets the playback delay.
func NewGIFRecorder(world r2.Box, width, fps, every int) *GIFRecorder {
	w := world.Max.X - world.Min.X
	h := world.Max.Y - world.Min.Y
	height := max(1, int(float64(width)*h/w))
	return &GIFRecorder{
		// One dot per pixel: a viewport of width/2 x height/4 cells.
		view:  Viewport{World: world, Cols: width / 2, Rows: max(1, height/4)},
		px:    width,
		py:    height,
		delay: max(2, 100*max(1, every)/max(1, fps)),
		every: max(1, every),
	}
}

func (g *GIFRecorder) OnFrame(f sim.Frame) {
	g.seen++
	if (g.seen-1)%g.every != 0 {
		return
	}
	g.frames = append(g.frames, g.rasterise(f))
}

func (g *GIFRecorder) Len() int { return len(g.frames) }

func (g *GIFRecorder) rasterise(f sim.Frame) *image.Paletted {
	palette := color.Palette{color.Black, f.Attractor.Color.Clamped()}
	for _, b := range f.Bodies {
		palette = append(palette, b.Color.Clamped(), dim(b.Color))
		if len(palette) >= 255 {
			break
		}
	}
	img := image.NewPaletted(image.Rect(0, 0, g.px, g.py), palette)

	for i, b := range f.Bodies {
		if 3+2*i >= len(palette) {
			break
		}
		for _, p := range b.Preview {
			x, y := g.view.ToDots(p)
			img.SetColorIndex(x, y, uint8(3+2*i))
		}
	}

	ax, ay := g.view.ToDots(f.Attractor.Pos)
	fillDisc(img, ax, ay, g.view.DotRadius(f.Attractor.Radius), 1)
	for i, b := range f.Bodies {
		if 2+2*i >= len(palette) {
			break
		}
		x, y := g.view.ToDots(b.Pos)
		fillDisc(img, x, y, g.view.DotRadius(b.Radius), uint8(2+2*i))
	}
	return img
}

func fillDisc(img *image.Paletted, cx, cy, r int, idx uint8) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetColorIndex(cx+dx, cy+dy, idx)
			}
		}
	}
}

func (g *GIFRecorder) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range g.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, g.delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (g *GIFRecorder) Save(path string) error {
	if len(g.frames) == 0 {
		return ErrNoFrames
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := g.Encode(f); err != nil {
		return err
	}
	return f.Close()
}
