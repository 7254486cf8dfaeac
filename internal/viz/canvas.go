package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells, each 2 dots wide and 4 dots tall. Every
// cell carries one colour; the last pixel drawn into a cell sets it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
	labels        map[[2]int]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in sub-pixels.
func (c *Canvas) Dots() (int, int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set sets a pixel at (x, y) in sub-pixel coordinates.
func (c *Canvas) Set(x, y int) {
	c.SetColor(x, y, "")
}

// SetColor sets a pixel and paints its cell with a hex colour. An empty
// colour keeps whatever the cell already had.
func (c *Canvas) SetColor(x, y int, hex string) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if hex != "" {
		c.Colors[row][col] = hex
	}
}

func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
	c.labels = nil
}

// Label overlays text on whole cells starting at (col, row). Labels win over
// dots when rendering.
func (c *Canvas) Label(col, row int, text string) {
	if c.labels == nil {
		c.labels = make(map[[2]int]string)
	}
	for i, r := range []rune(text) {
		if col+i < c.Width && row >= 0 && row < c.Height {
			c.labels[[2]int{row, col + i}] = string(r)
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, hex string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, hex)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawDisc fills a disc of radius r dots. Braille dots are twice as tall as
// they are wide on most terminals, so the vertical radius is doubled.
func (c *Canvas) DrawDisc(cx, cy, r int, hex string) {
	if r < 1 {
		c.SetColor(cx, cy, hex)
		return
	}
	ry := 2 * r
	for dy := -ry; dy <= ry; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx*ry*ry+dy*dy*r*r <= r*r*ry*ry {
				c.SetColor(cx+dx, cy+dy, hex)
			}
		}
	}
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if l, ok := c.labels[[2]int{i, j}]; ok {
				b.WriteString(l)
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders the canvas with each cell in its colour. Runs of cells
// sharing a colour are styled together.
func (c *Canvas) Render(labelStyle lipgloss.Style) string {
	var b strings.Builder
	for i, row := range c.Grid {
		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
			}
			run.Reset()
		}
		for j, r := range row {
			if l, ok := c.labels[[2]int{i, j}]; ok {
				flush()
				b.WriteString(labelStyle.Render(l))
				continue
			}
			if col := c.Colors[i][j]; col != runColor {
				flush()
				runColor = col
			}
			run.WriteRune(r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
