package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/sim"
)

var presetInfo = map[string]string{
	"solar":   "sun with earth, jupiter, saturn",
	"single":  "one small planet",
	"boosted": "comet on an eccentric orbit",
	"crowded": "five planets, short previews",
	"sandbox": "empty system, click to fill",
}

const (
	stateMenu = iota
	stateSim
)

// menu lets the user pick a preset, then hands over to the live Model.
type menu struct {
	state   int
	cursor  int
	presets []string
	opts    Options
	simOpts []sim.Option
	err     error
	width   int
	height  int
	live    Model
}

func NewMenu(opts Options, simOpts ...sim.Option) tea.Model {
	return menu{presets: config.ListPresets(), opts: opts, simOpts: simOpts}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.presets)-1 {
				m.cursor++
			}
		case "enter", " ":
			return m.start()
		}
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	name := m.presets[m.cursor]
	s, err := sim.New(config.GetPreset(name), m.simOpts...)
	if err != nil {
		m.err = err
		return m, nil
	}
	opts := m.opts
	opts.Title = name
	m.live = NewModel(s, opts)
	if m.width > 0 {
		next, _ := m.live.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.live = next.(Model)
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)

	b.WriteString("\n\n    " + h.Render("GRAVSIM") + "\n    " + sub.Render("orbits around a single star") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		if i == m.cursor {
			fmt.Fprintf(&b, "    %s %s  %s\n", h.Render("▸"), sel.Render(fmt.Sprintf("%-10s", name)), desc.Render(presetInfo[name]))
		} else {
			fmt.Fprintf(&b, "      %s  %s\n", sub.Render(fmt.Sprintf("%-10s", name)), sub.Render(presetInfo[name]))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" start  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// Run starts the live view on an existing simulation.
func Run(s *sim.Simulation, opts Options, progOpts ...tea.ProgramOption) error {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}, progOpts...)
	_, err := tea.NewProgram(NewModel(s, opts), progOpts...).Run()
	return err
}

// RunInteractive opens the preset picker first.
func RunInteractive(opts Options, simOpts []sim.Option, progOpts ...tea.ProgramOption) error {
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}, progOpts...)
	_, err := tea.NewProgram(NewMenu(opts, simOpts...), progOpts...).Run()
	return err
}
