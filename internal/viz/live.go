package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	panelWidth      = 44
	historyCapacity = 300
	// hoverDistance is how close, in world units, the cursor must be to a
	// body for its details to show.
	hoverDistance = 10
	// worldAspect is cols/rows for a 16:9 world on cells twice as tall as wide.
	worldAspect = 16.0 / 9.0 * 2
)

var (
	pauseLabel  = " ❚❚ PAUSE "
	resumeLabel = " ▶ PLAY   "
	buttonCells = len([]rune(pauseLabel))
)

type TickMsg time.Time

type Options struct {
	Title string
	// Cols and Rows size the canvas in cells. Zero uses 96x27 until the
	// first window size message arrives.
	Cols, Rows   int
	Theme        string
	FPS          int
	HidePreviews bool
	// GIFPath is where the g key saves its recording.
	GIFPath string
}

// Model drives a Simulation from Bubble Tea ticks and renders it onto a
// braille canvas next to a stats panel.
type Model struct {
	sim     *sim.Simulation
	opts    Options
	view    Viewport
	canvas  *Canvas
	theme   Theme
	st      styles
	width   int
	height  int
	fixed   bool
	last    time.Time
	energy  []float64
	status  string
	err     error
	cursor  r2.Vec
	hover   bool
	help    bool
	preview bool
	gif     *GIFRecorder
}

func NewModel(s *sim.Simulation, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "gravsim.gif"
	}
	if opts.Title == "" {
		opts.Title = "gravsim"
	}
	fixed := opts.Cols > 0 && opts.Rows > 0
	if !fixed {
		opts.Cols, opts.Rows = 96, 27
	}

	theme := GetTheme(opts.Theme)
	m := Model{
		sim:     s,
		opts:    opts,
		theme:   theme,
		st:      stylesFor(theme),
		fixed:   fixed,
		energy:  make([]float64, 0, historyCapacity),
		preview: !opts.HidePreviews,
	}
	m.resize(opts.Cols, opts.Rows)
	return m
}

func (m *Model) resize(cols, rows int) {
	w := m.sim.World()
	m.view = Viewport{
		World: r2.Box{Max: r2.Vec{X: w.Width, Y: w.Height}},
		Cols:  cols,
		Rows:  rows,
	}
	m.canvas = NewCanvas(cols, rows)
	m.sim.SetReservedRegions(m.view.CellBox(0, 0, buttonCells, 1))
}

// fit picks the largest canvas with the world's aspect that leaves room for
// the panel.
func (m *Model) fit(width, height int) {
	cols := width - panelWidth - 4
	rows := height - 1
	if cols < 20 || rows < 6 {
		return
	}
	if float64(cols)/float64(rows) > worldAspect {
		cols = int(float64(rows) * worldAspect)
	} else {
		rows = int(float64(cols) / worldAspect)
	}
	m.resize(cols, rows)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.fixed {
			m.fit(msg.Width, msg.Height)
		}
		return m, nil
	case TickMsg:
		m.step(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.togglePause()
	case "p":
		m.preview = !m.preview
	case "t":
		m.theme = NextTheme(m.theme)
		m.st = stylesFor(m.theme)
	case "?":
		m.help = !m.help
	case "x", "delete":
		if b, ok := m.sim.BodyNear(m.cursor, m.hoverTolerance()); ok && m.hover {
			m.sim.Remove(b.ID)
			m.status = fmt.Sprintf("removed %s", b.Name)
		}
	case "g":
		m.toggleGIF()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	inCanvas := msg.X >= 0 && msg.X < m.view.Cols && msg.Y >= 0 && msg.Y < m.view.Rows
	m.hover = inCanvas
	if !inCanvas {
		return
	}
	m.cursor = m.view.ToWorld(msg.X, msg.Y)

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Y == 0 && msg.X < buttonCells {
		m.togglePause()
		return
	}

	res, err := m.sim.SpawnAt(m.cursor)
	switch {
	case err != nil:
		m.status = err.Error()
	case res.OK():
		m.status = fmt.Sprintf("spawned at (%.0f, %.0f)", m.cursor.X, m.cursor.Y)
	default:
		m.status = res.String()
	}
}

func (m *Model) togglePause() {
	m.status = strings.ToLower(m.sim.TogglePause().String())
}

// step advances the simulation by the wall-clock time since the last tick.
func (m *Model) step(now time.Time) {
	dt := 1.0 / float64(m.opts.FPS)
	if !m.last.IsZero() {
		dt = now.Sub(m.last).Seconds()
	}
	m.last = now
	if dt <= 0 {
		return
	}

	if err := m.sim.Advance(dt); err != nil {
		m.err = err
		if m.sim.Mode() == sim.Running {
			m.sim.TogglePause()
		}
		return
	}

	f := m.sim.Frame()
	if f.Mode == sim.Running && f.EnergyErr == nil {
		m.energy = append(m.energy, f.Energy.Total)
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
	}
	if m.gif != nil {
		m.gif.OnFrame(f)
	}
}

func (m *Model) toggleGIF() {
	if m.gif == nil {
		w := m.sim.World()
		m.gif = NewGIFRecorder(r2.Box{Max: r2.Vec{X: w.Width, Y: w.Height}}, 320, m.opts.FPS, 2)
		m.status = "recording"
		return
	}
	if err := m.gif.Save(m.opts.GIFPath); err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.gif.Len(), m.opts.GIFPath)
	}
	m.gif = nil
}

func (m Model) hoverTolerance() float64 {
	return max(hoverDistance, m.view.CellSize())
}

func (m Model) draw(f sim.Frame) {
	m.canvas.Clear()

	if m.preview {
		for _, b := range f.Bodies {
			hex := dim(b.Color).Hex()
			for _, p := range b.Preview {
				x, y := m.view.ToDots(p)
				m.canvas.SetColor(x, y, hex)
			}
		}
	}

	ax, ay := m.view.ToDots(f.Attractor.Pos)
	m.canvas.DrawDisc(ax, ay, m.view.DotRadius(f.Attractor.Radius), f.Attractor.Color.Clamped().Hex())
	for _, b := range f.Bodies {
		x, y := m.view.ToDots(b.Pos)
		m.canvas.DrawDisc(x, y, m.view.DotRadius(b.Radius), b.Color.Clamped().Hex())
	}

	label := pauseLabel
	if f.Mode == sim.Paused {
		label = resumeLabel
	}
	m.canvas.Label(0, 0, label)
}

func dim(c colorful.Color) colorful.Color {
	return c.BlendRgb(colorful.Color{}, 0.55).Clamped()
}

func (m Model) View() string {
	f := m.sim.Frame()
	m.draw(f)
	canvasView := m.canvas.Render(m.st.button)

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.opts.Title)) + "\n")

	status := m.st.running.Render(f.Mode.String())
	if f.Mode == sim.Paused {
		status = m.st.paused.Render(f.Mode.String())
	}
	if m.gif != nil {
		status += "  " + m.st.recording.Render(fmt.Sprintf("● REC %d", m.gif.Len()))
	}
	s.WriteString(status + "\n\n")

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", f.Time))
	row("Steps", fmt.Sprintf("%d", f.Step))
	row("Stepper", m.sim.Stepper())
	row("Bodies", fmt.Sprintf("%d/%d %s", len(f.Bodies), m.sim.Capacity(),
		ProgressBar(float64(len(f.Bodies))/float64(max(1, m.sim.Capacity())), 10)))

	if f.EnergyErr != nil {
		row("Energy", m.st.errText.Render("undefined"))
	} else {
		row("Kinetic", fmt.Sprintf("%.1f", f.Energy.Kinetic))
		row("Potential", fmt.Sprintf("%.1f", f.Energy.Potential))
		row("Total", fmt.Sprintf("%.1f", f.Energy.Total))
	}
	row("Ang. mom.", fmt.Sprintf("%.1f", metrics.AngularMomentum(m.sim.Bodies(), m.sim.Attractor())))
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("total energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}

	s.WriteString("\n")
	s.WriteString(Swatch(f.Attractor.Color) + " " + m.st.value.Render(fmt.Sprintf("attractor  m=%.0f", f.Attractor.Mass)) + "\n")
	for _, b := range f.Bodies {
		s.WriteString(Swatch(b.Color) + " " + m.st.value.Render(fmt.Sprintf("%-10s m=%.0f", b.Name, b.Mass)) + "\n")
	}

	if m.hover {
		if b, ok := m.sim.BodyNear(m.cursor, m.hoverTolerance()); ok {
			s.WriteString(m.st.popup.Render(popupText(b)) + "\n")
		}
	}

	if m.status != "" {
		s.WriteString("\n" + m.st.value.Render(m.status) + "\n")
	}
	if m.err != nil {
		s.WriteString(m.st.errText.Render(errorText(m.err)) + "\n")
	}

	if m.help {
		s.WriteString(m.st.help.Render(helpText))
	} else {
		s.WriteString(m.st.help.Render("SP:Pause click:Spawn ?:Help Q:Quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.panel.Render(s.String()))
}

func popupText(b sim.BodySnapshot) string {
	speed := r2.Norm(b.Vel)
	return fmt.Sprintf("%s\nmass   %.1f\nradius %.1f\npos    (%.0f, %.0f)\nspeed  %.2f",
		b.Name, b.Mass, b.Radius, b.Pos.X, b.Pos.Y, speed)
}

func errorText(err error) string {
	var simErr *dynamo.SimulationError
	if errors.As(err, &simErr) {
		return fmt.Sprintf("halted: body %d at step %d", simErr.BodyID, simErr.Step)
	}
	return err.Error()
}

const helpText = `Space  pause / resume
Click  spawn a body
X      remove body under cursor
P      toggle trajectory previews
G      start / save GIF recording
T      cycle themes
?      toggle this help
Q      quit`
