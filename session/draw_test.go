package session

import (
	"image"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/palette"
	"github.com/marben/fractal_explorer/render"
)

// calculatorLog records which kind of calculator each draw used.
type calculatorLog struct {
	full, recolor int
}

func logCalculators(t *testing.T) *calculatorLog {
	t.Helper()
	l := &calculatorLog{}
	oldFull, oldRecolor := newCalculator, newRecolorCalculator
	newCalculator = func(d *fractal.Drawing, cv render.Canvas) (*render.Calculator, error) {
		c, err := oldFull(d, cv)
		if err == nil && !c.Recolor() {
			l.full++
		}
		return c, err
	}
	newRecolorCalculator = func(d *fractal.Drawing, g *fractal.IndexGrid, cv render.Canvas) (*render.Calculator, error) {
		c, err := oldRecolor(d, g, cv)
		if err == nil && c.Recolor() {
			l.recolor++
		}
		return c, err
	}
	t.Cleanup(func() {
		newCalculator, newRecolorCalculator = oldFull, oldRecolor
	})
	return l
}

func TestRecolorEligibility(t *testing.T) {
	scheme := func(t *testing.T, s *Session) {
		if err := s.SetScheme(palette.Zebra); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		name    string
		julia   bool
		edit    func(t *testing.T, s *Session)
		recolor bool
	}{
		{"mandelbrot with another scheme", false, scheme, true},
		{"same scheme again", false, func(*testing.T, *Session) {}, true},
		{"julia with the same point", true, scheme, true},
		{"julia with another point", true, func(t *testing.T, s *Session) {
			scheme(t, s)
			// typed without marking the parameters as edited
			s.mu.Lock()
			s.fields.JuliaR = "0.3000"
			s.mu.Unlock()
		}, false},
		{"mandelbrot over julia", true, func(_ *testing.T, s *Session) { s.SetJulia(false) }, false},
		{"julia over mandelbrot", false, func(_ *testing.T, s *Session) { s.SetJulia(true) }, false},
		{"edited fields", false, func(_ *testing.T, s *Session) {
			f := s.Fields()
			f.Iterations = "40"
			s.SetFields(f)
		}, false},
		{"zoom", false, func(t *testing.T, s *Session) {
			if err := s.SetZoom(image.Rect(5, 5, 30, 30)); err != nil {
				t.Fatal(err)
			}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := started(t, 0)
			if tt.julia {
				if err := s.PickJuliaPoint(20, 20); err != nil {
					t.Fatal(err)
				}
				s.SetJulia(true)
				draw(t, s)
			}
			before := current(t, s)

			l := logCalculators(t)
			tt.edit(t, s)
			draw(t, s)

			want := calculatorLog{full: 1}
			if tt.recolor {
				want = calculatorLog{recolor: 1}
			}
			if *l != want {
				t.Fatalf("calculators used %+v, want %+v", *l, want)
			}
			after := current(t, s)
			if tt.recolor && (after.Rect != before.Rect || after.MaxIterations != before.MaxIterations || after.JuliaPoint != before.JuliaPoint) {
				t.Errorf("recolor changed the view: %+v to %+v", before, after)
			}
		})
	}
}

func TestIterationGuess(t *testing.T) {
	tests := []struct {
		name  string
		typed int
	}{
		{"guessed", 0},
		{"typed", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := started(t, 0)
			if tt.typed > 0 {
				if err := s.SetIterations(tt.typed); err != nil {
					t.Fatal(err)
				}
			}
			if err := s.SetZoom(image.Rect(10, 10, 30, 30)); err != nil {
				t.Fatal(err)
			}
			draw(t, s)

			want := tt.typed
			if want == 0 {
				want = GuessIterations(s.ZoomFactor(), false)
				if want == InitialIterations {
					t.Fatalf("zoom factor %g does not raise the guess", s.ZoomFactor())
				}
			}
			if got := current(t, s).MaxIterations; got != want {
				t.Errorf("iterations %d, want %d", got, want)
			}
			if got := s.Fields().Iterations; got != strconv.Itoa(want) {
				t.Errorf("iterations field %q, want %d", got, want)
			}
		})
	}
}

func TestDrawingFailure(t *testing.T) {
	s := started(t, 0)
	fields := s.Fields()
	gen := s.Generation()
	memory := s.MemoryInUse()

	old := newCalculator
	newCalculator = func(d *fractal.Drawing, cv render.Canvas) (*render.Calculator, error) {
		return render.NewEvaluatorCalculator(d, func(fractal.ComplexPoint, int) int { panic("boom") }, cv)
	}
	t.Cleanup(func() { newCalculator = old })

	if err := s.SetZoom(image.Rect(10, 10, 30, 30)); err != nil {
		t.Fatal(err)
	}
	draw(t, s)

	if s.State().Running {
		t.Error("still running after a failed drawing")
	}
	if _, st2 := s.Status(); st2 != "Drawing failed." {
		t.Errorf("status %q, want Drawing failed.", st2)
	}
	if s.Generation() != gen || s.MemoryInUse() != memory {
		t.Errorf("generation %d memory %d, want %d and %d", s.Generation(), s.MemoryInUse(), gen, memory)
	}
	if s.State().OutOfMemory {
		t.Error("internal failure reported as out of memory")
	}
	if d := cmp.Diff(fields, s.Fields()); d != "" {
		t.Errorf("fields not restored:\n%s", d)
	}
}

func TestStopRestoresCurrentView(t *testing.T) {
	s := newSizedSession(t, 200, 0)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	wait(t, s)
	fields := s.Fields()

	// inside the main cardioid, every pixel runs to the cap
	zoom := image.Rect(100, 90, 120, 110)
	if err := s.SetZoom(zoom); err != nil {
		t.Fatal(err)
	}
	if err := s.SetIterations(100000); err != nil {
		t.Fatal(err)
	}
	if err := s.RequestDraw(); err != nil {
		t.Fatal(err)
	}
	if z := s.ZoomFactor(); z < 9 {
		t.Fatalf("zoom factor %g while drawing, want about 10", z)
	}
	s.Stop()
	wait(t, s)

	if _, st2 := s.Status(); st2 != "Stopped." {
		t.Fatalf("status %q, want Stopped.", st2)
	}
	if z := s.ZoomFactor(); z != 1 {
		t.Errorf("zoom factor %g after stop, want 1", z)
	}
	if d := cmp.Diff(fields, s.Fields()); d != "" {
		t.Errorf("fields not restored:\n%s", d)
	}
	got, err := s.DescribePoint(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Point: -2.5000 + 2.0000i" {
		t.Errorf("got %q", got)
	}
	if v := current(t, s); v.Zoom == nil || *v.Zoom != zoom {
		t.Errorf("live zoom %v, want %v", v.Zoom, zoom)
	}
}
