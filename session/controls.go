package session

import (
	"image"
	"strconv"

	fractal "github.com/marben/fractal_explorer"
)

// MinZoomSize is the smallest accepted side of a zoom rectangle, in pixels.
const MinZoomSize = 3

// SetFields replaces the typed parameters. Any change marks the parameters
// as edited, which disables the recolor shortcut and the iteration guess
// until the next drawing completes.
func (s *Session) SetFields(f fractal.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f != s.fields {
		s.fields = f
		s.paramsChanged = true
	}
}

// SetIterations is SetFields for the iteration cap alone.
func (s *Session) SetIterations(n int) error {
	if n < 1 {
		return invalid("iterations", "there must be at least 1 iteration")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := strconv.Itoa(n); t != s.fields.Iterations {
		s.fields.Iterations = t
		s.paramsChanged = true
	}
	return nil
}

// SetScheme selects the colour scheme of the next drawing.
func (s *Session) SetScheme(name string) error {
	if _, ok := s.cfg.Palettes.Colors(name); !ok {
		return ErrUnknownScheme
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheme = name
	return nil
}

// SetJulia toggles Julia mode. Turning it on over a Mandelbrot drawing
// disables zooming until a Julia drawing is current.
func (s *Session) SetJulia(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.julia = on
}

// SetZoom sets the live zoom rectangle on the current image. A rectangle
// smaller than MinZoomSize on either side is rejected and clears the zoom.
func (s *Session) SetZoom(r image.Rectangle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.zoomAllowed(); err != nil {
		return err
	}
	r = r.Canon()
	if r.Dx() < MinZoomSize || r.Dy() < MinZoomSize {
		s.zoom = nil
		return invalid("zoom", "the zoom rectangle is too small")
	}
	s.zoom = &r
	s.status = "Zoom: " + s.describeRect(r)
	return nil
}

// ClearZoom drops the live zoom rectangle.
func (s *Session) ClearZoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = nil
}

func (s *Session) zoomAllowed() error {
	switch {
	case s.current == nil:
		return ErrNoDrawing
	case s.current.IsHelp():
		return ErrZoomDisabled
	case s.julia && s.current.Kind() != fractal.KindJulia:
		return ErrZoomDisabled
	}
	return nil
}

// PickJuliaPoint copies the complex point under pixel (x, y) of the current
// Mandelbrot drawing into the Julia fields. The parameters do not count as
// edited.
func (s *Session) PickJuliaPoint(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoDrawing
	}
	if s.current.Kind() != fractal.KindMandelbrot {
		return ErrNotMandelbrot
	}
	p, err := s.pointAt(x, y)
	if err != nil {
		return err
	}
	scale := Scale(s.zoomFactor)
	s.fields.JuliaR = FormatFloat(p.Real, scale)
	s.fields.JuliaI = FormatFloat(p.Imag, scale)
	s.status = "Julia point: " + FormatPoint(p, scale)
	return nil
}

// DescribePoint formats the complex point under pixel (x, y) at the active
// precision and shows it in the status line.
func (s *Session) DescribePoint(x, y int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return "", ErrNoDrawing
	}
	if s.current.IsHelp() {
		return "", ErrZoomDisabled
	}
	p, err := s.pointAt(x, y)
	if err != nil {
		return "", err
	}
	s.status = "Point: " + FormatPoint(p, Scale(s.zoomFactor))
	return s.status, nil
}

func (s *Session) pointAt(x, y int) (fractal.ComplexPoint, error) {
	if x < 0 || y < 0 || x > s.cfg.Width || y > s.cfg.Height {
		return fractal.ComplexPoint{}, ErrOutsideImage
	}
	m := fractal.NewPixelMapping(s.current.Rect(), s.cfg.Width, s.cfg.Height)
	return m.Point(x, y), nil
}

func (s *Session) describeRect(r image.Rectangle) string {
	m := fractal.NewPixelMapping(s.current.Rect(), s.cfg.Width, s.cfg.Height)
	scale := Scale(s.zoomFactor)
	return FormatPoint(m.Point(r.Min.X, r.Max.Y), scale) + " to " + FormatPoint(m.Point(r.Max.X, r.Min.Y), scale)
}

// GotoLandmark puts a named region of the Mandelbrot set into the fields and
// leaves Julia mode. The view is drawn by the next RequestDraw.
func (s *Session) GotoLandmark(name string) error {
	r, ok := fractal.Landmark(name)
	if !ok {
		return ErrUnknownLandmark
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setRectFields(r, Scale(s.initialRect.Width()/r.Width()))
	s.julia = false
	s.zoom = nil
	s.paramsChanged = true
	s.status = "Landmark: " + name
	return nil
}
