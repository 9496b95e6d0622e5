package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	canvasWidth  = 60
	canvasHeight = 16
	frameRate    = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Viewer is a Bubble Tea model stepping through the time levels of a grid.
// Levels are copied out of the source once, so the source may be discarded.
type Viewer struct {
	title    string
	dt, dx   float64
	levels   [][]float64
	lo, hi   float64
	level    int
	probe    int
	running  bool
	showHelp bool
	theme    Theme
	styles   styles
	canvas   *Canvas
}

// NewViewer reads src and returns a viewer positioned on the first level.
// dt and dx label the time and space axes.
func NewViewer(src Source, title string, dt, dx float64) (Viewer, error) {
	lo, hi, err := Bounds(src)
	if err != nil {
		return Viewer{}, err
	}
	levels := make([][]float64, src.TimeSteps())
	for i := range levels {
		if levels[i], err = Level(src, i); err != nil {
			return Viewer{}, err
		}
	}
	theme := Themes[0]
	return Viewer{
		title:  title,
		dt:     dt,
		dx:     dx,
		levels: levels,
		lo:     lo,
		hi:     hi,
		probe:  src.Width() / 2,
		theme:  theme,
		styles: newStyles(theme),
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}, nil
}

func (v Viewer) Level() int        { return v.level }
func (v Viewer) Probe() int        { return v.probe }
func (v Viewer) Running() bool     { return v.running }
func (v Viewer) ThemeName() string { return v.theme.Name }

func (v Viewer) Init() tea.Cmd {
	return tick()
}

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return v, tea.Quit
		case " ":
			v.running = !v.running
			if v.running && v.level == len(v.levels)-1 {
				v.level = 0
			}
		case "left", "h":
			v.seek(v.level - 1)
		case "right", "l":
			v.seek(v.level + 1)
		case "home", "g":
			v.seek(0)
		case "end", "G":
			v.seek(len(v.levels) - 1)
		case "up", "k":
			v.move(v.probe + 1)
		case "down", "j":
			v.move(v.probe - 1)
		case "t":
			v.theme = NextTheme(v.theme)
			v.styles = newStyles(v.theme)
		case "?":
			v.showHelp = !v.showHelp
		}
	case TickMsg:
		if v.running {
			if v.level < len(v.levels)-1 {
				v.level++
			} else {
				v.running = false
			}
		}
		return v, tick()
	}
	return v, nil
}

func (v *Viewer) seek(level int) {
	v.level = max(0, min(level, len(v.levels)-1))
}

func (v *Viewer) move(probe int) {
	v.probe = max(0, min(probe, len(v.levels[0])-1))
}

func (v Viewer) View() string {
	row := v.levels[v.level]

	v.canvas.Clear()
	v.canvas.PlotCurve(row, v.lo, v.hi)
	if n := len(row); n > 1 {
		v.canvas.MarkColumn(v.probe * (v.canvas.Width*2 - 1) / (n - 1))
	}
	canvasView := v.styles.canvas.Render(v.styles.curve.Render(v.canvas.String()) +
		fmt.Sprintf("%.4g … %.4g", v.lo, v.hi))

	var s strings.Builder
	s.WriteString(v.styles.header.Render(strings.ToUpper(v.title)) + "\n")
	status := "PAUSED"
	if v.running {
		status = "PLAYING"
	}
	s.WriteString(status + "\n\n")

	last := len(v.levels) - 1
	progress := 1.0
	if last > 0 {
		progress = float64(v.level) / float64(last)
	}
	s.WriteString(ProgressBar(progress, 24) + "\n\n")

	history := make([]float64, v.level+1)
	for i := range history {
		history[i] = v.levels[i][v.probe]
	}
	s.WriteString(v.styles.probe.Render(Sparkline(history, 24)) + "\n\n")

	u := row[v.probe]
	line := func(label, value string) {
		s.WriteString(v.styles.label.Render(label) + v.styles.value.Render(value) + "\n")
	}
	line("Level", fmt.Sprintf("%d/%d", v.level, last))
	line("Time", fmt.Sprintf("%.4g", float64(v.level)*v.dt))
	line("Probe x", fmt.Sprintf("%.4g", float64(v.probe)*v.dx))
	if math.IsNaN(u) {
		s.WriteString(v.styles.label.Render("u") + v.styles.warning.Render("NaN") + "\n")
	} else {
		line("u", fmt.Sprintf("%.6g", u))
	}
	line("Theme", v.theme.Name)

	s.WriteString(v.styles.help.Render("─────────────────────\nSP:Play ←→:Level ↑↓:Probe\nT:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, v.styles.stats.Render(s.String()))
	if v.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Play/Pause              ║
║  ←/→ h/l   - Previous/next level     ║
║  ↑/↓ k/j   - Move probe point        ║
║  Home/End  - First/last level        ║
║  T         - Cycle themes            ║
║  ?         - Toggle this help        ║
║  Q         - Quit                    ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts an interactive viewer on the terminal.
func Run(src Source, title string, dt, dx float64) error {
	v, err := NewViewer(src, title, dt, dx)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(v, tea.WithAltScreen()).Run()
	return err
}
