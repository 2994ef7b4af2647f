package session

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/render"
)

// Calculator constructors. Tests replace them to observe or break calculations.
var (
	newCalculator        = render.NewCalculator
	newRecolorCalculator = render.NewRecolorCalculator
)

// request holds the parameters of a draw after validation.
type request struct {
	rect       fractal.ComplexRectangle
	iterations int
	julia      bool
	juliaPoint fractal.ComplexPoint
	scheme     string
	colors     []color.RGBA
}

// RequestDraw starts calculating a drawing from the live zoom rectangle, or
// from the typed fields when there is none. It returns ErrBusy, without
// changing anything, while another calculation runs.
func (s *Session) RequestDraw() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flight != nil {
		return ErrBusy
	}
	if s.outOfMemory {
		s.enterOutOfMemory()
		return ErrOutOfMemory
	}
	s.status, s.status2 = "", ""

	req, err := s.resolve()
	if err != nil {
		s.status = "Warning: " + err.Error()
		fractal.Logger().Warn("draw rejected", "err", err)
		return err
	}
	return s.start(req)
}

// resolve validates the inputs of a draw.
func (s *Session) resolve() (request, error) {
	var req request

	if s.zoom != nil && s.current != nil {
		m := fractal.NewPixelMapping(s.current.Rect(), s.cfg.Width, s.cfg.Height)
		z := s.zoom.Canon()
		req.rect = fractal.RectFromPoints(m.Point(z.Min.X, z.Min.Y), m.Point(z.Max.X, z.Max.Y))
	} else {
		r, err := parseRect(s.fields)
		if err != nil {
			return req, err
		}
		req.rect = r
	}
	req.rect = req.rect.ExpandToFit(s.cfg.Width, s.cfg.Height)

	n, err := parseIterations(s.fields.Iterations)
	if err != nil {
		return req, err
	}
	req.iterations = n

	colors, ok := s.cfg.Palettes.Colors(s.scheme)
	if !ok {
		return req, &ValidationError{Field: "scheme", Msg: ErrUnknownScheme.Error()}
	}
	req.scheme, req.colors = s.scheme, colors

	req.julia = s.julia
	if req.julia {
		p, err := parseJulia(s.fields)
		if err != nil {
			return req, err
		}
		req.juliaPoint = p
	}
	return req, nil
}

func (s *Session) start(req request) error {
	recolor := s.canRecolor(req)
	d := s.newDrawing(req, recolor)
	if !recolor {
		s.maybeGuessIterations(d)
	}
	s.previousIterations = d.MaxIterations()

	if DeepZoom(d.Rect(), s.cfg.Width, Scale(s.zoomFactor)) {
		s.status = deepZoomWarning
		fractal.Logger().Warn("deep zoom", "zoom", s.zoomFactor)
	}

	cv := render.Canvas{Width: s.cfg.Width, Height: s.cfg.Height, Colors: req.colors, Budget: s.budget}
	var (
		calc *render.Calculator
		err  error
	)
	if recolor {
		calc, err = newRecolorCalculator(d, s.current.Indices(), cv)
	} else {
		calc, err = newCalculator(d, cv)
	}
	if err != nil {
		s.showCurrent()
		s.status2 = "Drawing failed."
		return fmt.Errorf("new calculator: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &flight{calc: calc, cancel: cancel, done: make(chan struct{})}
	s.flight = f
	s.progress.Store(0)
	s.status2 = "0% Complete."
	calc.OnProgress = func(p int) { s.progress.Store(int32(p)) }

	fractal.Logger().Info("drawing started",
		"drawing", d.String(),
		"zoom", strconv.FormatFloat(s.zoomFactor, 'g', 6, 64),
		"recolor", recolor)
	go s.run(ctx, f)
	return nil
}

func (s *Session) run(ctx context.Context, f *flight) {
	res := f.calc.Run(ctx)
	s.complete(f, res)
}

// complete applies the result of a calculation. The done channel is closed
// after the lock is released so that waiters observe the settled state.
func (s *Session) complete(f *flight, res render.Result) {
	defer close(f.done)
	s.mu.Lock()
	defer s.mu.Unlock()

	f.cancel()
	s.flight = nil
	s.paramsChanged = false

	log := fractal.Logger()
	switch res.Outcome {
	case render.Completed:
		if s.current != nil {
			s.captureZoom(s.current)
			s.history.PushPrevious(s.current)
		}
		s.setCurrent(res.Drawing)
		s.progress.Store(100)
		s.status2 = "100% Complete."
		log.Info("drawing completed", "elapsed", res.Elapsed, "memory", s.budget.Used())
	case render.Cancelled:
		s.showCurrent()
		s.status2 = "Stopped."
		log.Info("drawing stopped", "elapsed", res.Elapsed)
	case render.OutOfMemory:
		s.showCurrent()
		s.enterOutOfMemory()
	default:
		s.showCurrent()
		s.status2 = "Drawing failed."
		log.Error("drawing failed", "err", res.Err)
	}
}

// showCurrent puts the parameters of the current drawing back after a
// calculation that did not complete, so that the fields and the zoom factor
// describe the picture on screen again.
func (s *Session) showCurrent() {
	if s.current == nil {
		s.zoomFactor = 1
		s.previousIterations = 1
		return
	}
	s.previousIterations = s.current.MaxIterations()
	s.showDrawing(s.current)
}

// Stop cancels the running calculation. It reports whether there was one.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == nil {
		return false
	}
	s.flight.cancel()
	return true
}

// canRecolor reports whether the next drawing only repaints the current one
// with another scheme.
func (s *Session) canRecolor(req request) bool {
	cur := s.current
	if cur == nil || cur.IsHelp() || cur.Indices() == nil {
		return false
	}
	if s.zoom != nil || s.paramsChanged {
		return false
	}
	if req.julia != (cur.Kind() == fractal.KindJulia) {
		return false
	}
	if req.julia {
		scale := Scale(s.zoomFactor)
		p := cur.JuliaPoint()
		if s.fields.JuliaR != FormatFloat(p.Real, scale) || s.fields.JuliaI != FormatFloat(p.Imag, scale) {
			return false
		}
	}
	return true
}

// newDrawing builds the drawing for req and shows its parameters.
func (s *Session) newDrawing(req request, recolor bool) *fractal.Drawing {
	cur := s.current
	var d *fractal.Drawing
	switch {
	case recolor && cur.Kind() == fractal.KindJulia:
		d = fractal.NewJulia(cur.Rect(), cur.MaxIterations(), req.scheme, cur.JuliaPoint())
	case recolor:
		d = fractal.NewMandelbrot(cur.Rect(), cur.MaxIterations(), req.scheme)
	case req.julia && (cur == nil || cur.Kind() != fractal.KindJulia):
		// a fresh Julia set starts from the full view
		d = fractal.NewJulia(s.initialJuliaRect, InitialIterations, req.scheme, req.juliaPoint)
		s.previousIterations = InitialIterations
	case req.julia:
		d = fractal.NewJulia(req.rect, req.iterations, req.scheme, req.juliaPoint)
	default:
		d = fractal.NewMandelbrot(req.rect, req.iterations, req.scheme)
	}
	s.showDrawing(d)
	return d
}

// maybeGuessIterations raises the cap of d to suit its zoom unless the user
// typed a cap of their own.
func (s *Session) maybeGuessIterations(d *fractal.Drawing) {
	if s.previousIterations != d.MaxIterations() {
		return
	}
	n := GuessIterations(s.zoomFactor, d.Kind() == fractal.KindJulia)
	if n == d.MaxIterations() {
		return
	}
	d.SetMaxIterations(n)
	s.fields.Iterations = strconv.Itoa(n)
	s.paramsChanged = true
}

func parseRect(f fractal.Fields) (fractal.ComplexRectangle, error) {
	var v [4]float64
	for i, t := range []string{f.RMin, f.RMax, f.IMin, f.IMax} {
		x, err := parseFloat(t)
		if err != nil {
			return fractal.ComplexRectangle{}, invalid("rectangle", "could not convert all input to numbers")
		}
		v[i] = x
	}
	if v[0] >= v[1] {
		return fractal.ComplexRectangle{}, invalid("real", "the Real Max is less than the Min")
	}
	if v[2] >= v[3] {
		return fractal.ComplexRectangle{}, invalid("imaginary", "the Imaginary Max is less than the Min")
	}
	return fractal.ComplexRectangle{RMin: v[0], RMax: v[1], IMin: v[2], IMax: v[3]}, nil
}

func parseIterations(t string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(t))
	if err != nil {
		return 0, invalid("iterations", "cannot convert iterations to a number")
	}
	if n < 1 {
		return 0, invalid("iterations", "there must be at least 1 iteration")
	}
	return n, nil
}

func parseJulia(f fractal.Fields) (fractal.ComplexPoint, error) {
	re, err := parseFloat(f.JuliaR)
	if err != nil {
		return fractal.ComplexPoint{}, invalid("julia", "cannot get Julia point")
	}
	im, err := parseFloat(f.JuliaI)
	if err != nil {
		return fractal.ComplexPoint{}, invalid("julia", "cannot get Julia point")
	}
	return fractal.ComplexPoint{Real: re, Imag: im}, nil
}

func parseFloat(t string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not finite", t)
	}
	return f, nil
}
