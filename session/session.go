// Package session drives fractal exploration: it turns the typed parameters
// and zoom rectangle of a front end into drawings, computes them one at a
// time in the background and keeps the undo/redo history of views.
//
// A Session is safe for concurrent use. Front ends poll it (Snapshot,
// Progress, Generation) rather than receive callbacks, so no session lock is
// ever held while front-end code runs.
package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strconv"
	"sync"
	"sync/atomic"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/help"
	"github.com/marben/fractal_explorer/render"
)

// The initial views into the sets, before fitting them to the image.
var (
	InitialRect      = fractal.NewComplexRectangle(-2.5, 1.5, -2.0, 2.0)
	InitialJuliaRect = fractal.NewComplexRectangle(-2.0, 2.0, -2.0, 2.0)
)

// DefaultWelcome is the first line of the help screen.
const DefaultWelcome = "Welcome to the Fractal Explorer !!!"

const (
	deepZoomWarning = "Deep Zoom... Drawing resolution will be degraded ;-("
	oomWarning      = "Out of memory! Please delete some drawings."
)

// Palettes supplies the colour schemes. All schemes have the same size.
type Palettes interface {
	Colors(scheme string) ([]color.RGBA, bool)
	Names() []string
}

// Config is fixed for the lifetime of a session.
type Config struct {
	Width, Height int
	Palettes      Palettes
	// Scheme is selected at start and used by the help screen.
	Scheme string
	// MemoryLimit bounds the bytes held by all drawings. Zero means unlimited.
	MemoryLimit int64
	Welcome     string
	// RenderHelp draws the help screen. Defaults to help.Render.
	RenderHelp func(w, h int, welcome string) (*image.RGBA, error)
}

// flight is the calculation in progress.
type flight struct {
	calc   *render.Calculator
	cancel context.CancelFunc
	done   chan struct{}
}

type Session struct {
	cfg    Config
	budget *fractal.Budget

	// fitted to the image aspect ratio
	initialRect      fractal.ComplexRectangle
	initialJuliaRect fractal.ComplexRectangle

	progress atomic.Int32

	mu                 sync.Mutex
	current            *fractal.Drawing
	history            History
	help               *fractal.Drawing
	flight             *flight
	outOfMemory        bool
	paramsChanged      bool
	previousIterations int
	fields             fractal.Fields
	julia              bool
	scheme             string
	zoom               *image.Rectangle
	zoomFactor         float64
	status, status2    string
	generation         uint64
}

func New(cfg Config) (*Session, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, errors.New("image size must be positive")
	}
	if cfg.Palettes == nil {
		return nil, errors.New("no palettes")
	}
	names := cfg.Palettes.Names()
	if len(names) == 0 {
		return nil, errors.New("no color schemes")
	}
	if cfg.Scheme == "" {
		cfg.Scheme = names[0]
	}
	if _, ok := cfg.Palettes.Colors(cfg.Scheme); !ok {
		return nil, ErrUnknownScheme
	}
	if cfg.Welcome == "" {
		cfg.Welcome = DefaultWelcome
	}
	if cfg.RenderHelp == nil {
		cfg.RenderHelp = help.Render
	}

	s := &Session{
		cfg:                cfg,
		budget:             fractal.NewBudget(cfg.MemoryLimit),
		initialRect:        InitialRect.ExpandToFit(cfg.Width, cfg.Height),
		initialJuliaRect:   InitialJuliaRect.ExpandToFit(cfg.Width, cfg.Height),
		previousIterations: 1,
		scheme:             cfg.Scheme,
		zoomFactor:         1,
		status:             cfg.Welcome,
	}
	s.setRectFields(s.initialRect, Scale(1))
	s.fields.Iterations = strconv.Itoa(InitialIterations)
	s.fields.JuliaR = FormatFloat(0, MinScale)
	s.fields.JuliaI = FormatFloat(0, MinScale)
	return s, nil
}

// Start shows the help screen and begins calculating the first Mandelbrot view.
func (s *Session) Start() error {
	if err := s.ShowHelp(); err != nil {
		return err
	}
	return s.RequestDraw()
}

// View is a read-only picture of the current drawing.
type View struct {
	Kind          fractal.Kind
	Rect          fractal.ComplexRectangle
	MaxIterations int
	JuliaPoint    fractal.ComplexPoint
	Scheme        string
	// Image must not be modified.
	Image *image.RGBA
	// Zoom is the live zoom rectangle, if any.
	Zoom       *image.Rectangle
	Generation uint64
}

// Current describes the current drawing. It reports false before the first
// drawing exists.
func (s *Session) Current() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.current
	if d == nil {
		return View{}, false
	}
	v := View{
		Kind:          d.Kind(),
		Rect:          d.Rect(),
		MaxIterations: d.MaxIterations(),
		JuliaPoint:    d.JuliaPoint(),
		Scheme:        d.Scheme(),
		Image:         d.Image(),
		Generation:    s.generation,
	}
	if s.zoom != nil {
		z := *s.zoom
		v.Zoom = &z
	}
	return v, true
}

// Snapshot collects everything a display and control surface shows.
func (s *Session) Snapshot() fractal.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := fractal.Snapshot{
		Generation: s.generation,
		Width:      s.cfg.Width,
		Height:     s.cfg.Height,
		Progress:   int(s.progress.Load()),
		Status:     s.status,
		Status2:    s.status2,
		State:      s.stateLocked(),
		Fields:     s.fields,
		Scheme:     s.scheme,
		Schemes:    s.cfg.Palettes.Names(),
		Landmarks:  fractal.LandmarkNames(),
	}
	if s.zoom != nil {
		z := *s.zoom
		snap.Zoom = &z
	}
	return snap
}

func (s *Session) State() fractal.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() fractal.State {
	return fractal.State{
		HasPrevious: s.history.HasPrevious(),
		HasNext:     s.history.HasNext(),
		CanDelete:   !s.history.Empty(),
		Running:     s.flight != nil,
		OutOfMemory: s.outOfMemory,
		Julia:       s.julia,
		Help:        s.current != nil && s.current.IsHelp(),
	}
}

// Fields returns the typed parameters, formatted at the active precision.
func (s *Session) Fields() fractal.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields
}

// Status returns the two status lines.
func (s *Session) Status() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.status2
}

// Progress is the completed percentage of the running (or last) calculation.
func (s *Session) Progress() int {
	return int(s.progress.Load())
}

// Generation changes every time another drawing becomes current. A front
// end dragging a zoom rectangle restarts the drag when it changes.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// ZoomFactor is the initial view width divided by the displayed view width.
func (s *Session) ZoomFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoomFactor
}

// Scheme is the selected colour scheme.
func (s *Session) Scheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheme
}

func (s *Session) Schemes() []string { return s.cfg.Palettes.Names() }
func (s *Session) Size() (int, int)  { return s.cfg.Width, s.cfg.Height }

// MemoryInUse is the number of bytes held by drawings.
func (s *Session) MemoryInUse() int64 { return s.budget.Used() }

// Wait blocks until the running calculation, if any, has completed.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	f := s.flight
	s.mu.Unlock()
	if f == nil {
		return nil
	}
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setCurrent installs d as the current drawing. Any zoom drag on the
// previous image is void from now on.
func (s *Session) setCurrent(d *fractal.Drawing) {
	s.current = d
	s.generation++
	s.previousIterations = d.MaxIterations()
	s.zoom = nil
	if z, ok := d.Zoom(); ok {
		s.zoom = &z
	}
	s.showDrawing(d)
}

// captureZoom stores the live zoom rectangle into d before it leaves the
// current slot.
func (s *Session) captureZoom(d *fractal.Drawing) {
	d.SetZoom(s.zoom)
}

// showDrawing puts d's parameters into the fields and adopts its zoom factor.
func (s *Session) showDrawing(d *fractal.Drawing) {
	s.scheme = d.Scheme()
	s.zoomFactor = s.initialRect.Width() / d.Rect().Width()
	scale := Scale(s.zoomFactor)
	s.setRectFields(d.Rect(), scale)
	s.fields.Iterations = strconv.Itoa(d.MaxIterations())
	s.julia = d.Kind() == fractal.KindJulia
	if s.julia {
		s.fields.JuliaR = FormatFloat(d.JuliaPoint().Real, scale)
		s.fields.JuliaI = FormatFloat(d.JuliaPoint().Imag, scale)
	}
}

func (s *Session) setRectFields(r fractal.ComplexRectangle, scale int) {
	s.fields.RMin = FormatFloat(r.RMin, scale)
	s.fields.RMax = FormatFloat(r.RMax, scale)
	s.fields.IMin = FormatFloat(r.IMin, scale)
	s.fields.IMax = FormatFloat(r.IMax, scale)
}

func (s *Session) enterOutOfMemory() {
	s.outOfMemory = true
	s.status = oomWarning
	s.status2 = "Out of Memory!"
	fractal.Logger().Warn(oomWarning, "in_use", s.budget.Used(), "limit", s.budget.Limit())
}

// release drops d's buffers. The help drawing is rebuilt on next use.
func (s *Session) release(d *fractal.Drawing) {
	if d == s.help {
		s.help = nil
	}
	d.Release(s.budget)
}
