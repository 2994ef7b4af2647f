package main

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/session"
)

const (
	pollEvery   = 250 * time.Millisecond
	statusLines = 3
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0d0d0"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87afd7"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	keysStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

const keysHelp = "enter draw · s stop · [ ] prev/next · x delete · ? help · j julia · c colors · l landmark · +/- iterations · y copy · esc unzoom · q quit"

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(pollEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	sess   *session.Session
	width  int
	height int

	// drag is the pixel where a mouse drag started, for the drawing of
	// generation dragGen.
	drag    *image.Point
	dragGen uint64

	landmark int
	message  string
	failed   bool

	// picture cache
	picture    string
	pictureKey string
}

func newModel(sess *session.Session) model {
	return model{sess: sess}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.refresh()
	return m, cmd
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// a finished drawing interrupts a drag on the old image
		if m.drag != nil && m.sess.Generation() != m.dragGen {
			m.drag = nil
		}
		return m, tick()

	case tea.MouseMsg:
		return m.mouse(msg), nil

	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

func (m model) key(msg tea.KeyMsg) (model, tea.Cmd) {
	var err error
	m.message, m.failed = "", false

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter", "d":
		err = m.sess.RequestDraw()
	case "s":
		m.sess.Stop()
	case "[", "p":
		err = m.sess.Previous()
	case "]", "n":
		err = m.sess.Next()
	case "x":
		err = m.sess.Delete()
	case "?":
		err = m.sess.ShowHelp()
	case "j":
		m.sess.SetJulia(!m.sess.State().Julia)
	case "c":
		err = m.sess.SetScheme(next(m.sess.Schemes(), m.sess.Scheme()))
	case "l":
		names := fractal.LandmarkNames()
		name := names[m.landmark%len(names)]
		m.landmark++
		if err = m.sess.GotoLandmark(name); err == nil {
			err = m.sess.RequestDraw()
		}
	case "+", "=":
		err = m.scaleIterations(2, 1)
	case "-":
		err = m.scaleIterations(1, 2)
	case "y":
		f := m.sess.Fields()
		text := fmt.Sprintf("real %s %s imaginary %s %s iterations %s", f.RMin, f.RMax, f.IMin, f.IMax, f.Iterations)
		if err = clipboard.WriteAll(text); err == nil {
			m.message = "copied view to clipboard"
		}
	case "esc":
		m.drag = nil
		m.sess.ClearZoom()
	}
	m.report(err)
	return m, nil
}

func (m *model) scaleIterations(mul, div int) error {
	n, err := strconv.Atoi(m.sess.Fields().Iterations)
	if err != nil {
		n = session.InitialIterations
	}
	n = n * mul / div
	if n < 1 {
		n = 1
	}
	return m.sess.SetIterations(n)
}

func (m model) mouse(msg tea.MouseMsg) model {
	g, ok := m.grid()
	if !ok || msg.Y >= g.rows || msg.X >= g.cols {
		return m
	}
	p := g.pixel(msg.X, msg.Y, false)

	switch msg.Type {
	case tea.MouseLeft:
		if m.drag == nil {
			m.drag = &p
			m.dragGen = m.sess.Generation()
		}
	case tea.MouseMotion:
		if m.drag != nil {
			if s, err := m.sess.DescribePoint(p.X, p.Y); err == nil {
				m.message = s
			}
		}
	case tea.MouseRelease:
		if m.drag == nil {
			return m
		}
		start := *m.drag
		m.drag = nil
		if m.sess.Generation() != m.dragGen {
			return m
		}
		var err error
		if start == p {
			err = m.sess.PickJuliaPoint(p.X, p.Y)
		} else {
			err = m.sess.SetZoom(image.Rectangle{Min: start, Max: p})
		}
		m.report(err)
	}
	return m
}

func (m *model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrBusy):
		m.message = "still drawing, press s to stop"
	default:
		m.message, m.failed = err.Error(), true
	}
}

// grid fits the image into the terminal above the status lines.
func (m model) grid() (grid, bool) {
	w, h := m.sess.Size()
	cols, rows := m.width, m.height-statusLines
	if cols < 1 || rows < 1 {
		return grid{}, false
	}
	// keep the aspect ratio, a cell is two pixels high
	if c := rows * 2 * w / h; c < cols {
		cols = c
	} else {
		rows = cols * h / w / 2
	}
	if cols < 1 || rows < 1 {
		return grid{}, false
	}
	return grid{cols: cols, rows: rows, imgW: w, imgH: h}, true
}

// refresh re-renders the picture when the drawing, its zoom or the
// terminal size changed.
func (m *model) refresh() {
	g, ok := m.grid()
	if !ok {
		m.picture, m.pictureKey = "", ""
		return
	}
	v, ok := m.sess.Current()
	if !ok || v.Image == nil {
		m.picture, m.pictureKey = "", ""
		return
	}
	key := fmt.Sprintf("%d %v %v", v.Generation, g, v.Zoom)
	if key == m.pictureKey {
		return
	}
	m.picture, m.pictureKey = g.render(v.Image, v.Zoom), key
}

func (m model) View() string {
	snap := m.sess.Snapshot()

	status2 := snap.Status2
	if snap.State.Running {
		status2 = fmt.Sprintf("%d%% Complete.", snap.Progress)
	}
	line1 := statusStyle.Render(strings.TrimSpace(status2 + " " + snap.Status))
	f := snap.Fields
	line2 := infoStyle.Render(fmt.Sprintf("%s [%s..%s]x[%s..%s] it=%s colors=%s",
		kind(snap), f.RMin, f.RMax, f.IMin, f.IMax, f.Iterations, snap.Scheme))
	line3 := keysStyle.Render(keysHelp)
	if m.message != "" {
		style := infoStyle
		if m.failed {
			style = errorStyle
		}
		line3 = style.Render(m.message)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.picture, line1, line2, line3)
}

func kind(s fractal.Snapshot) string {
	switch {
	case s.State.Help:
		return "help"
	case s.State.Julia:
		return "julia " + s.Fields.JuliaR + "," + s.Fields.JuliaI
	}
	return "mandelbrot"
}

// next returns the name after cur in names, wrapping around.
func next(names []string, cur string) string {
	for i, n := range names {
		if n == cur {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
