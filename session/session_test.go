package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/palette"
	"github.com/marben/fractal_explorer/render"
)

const testSize = 40

func blankHelp(w, h int, _ string) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func newTestSession(t *testing.T, memoryLimit int64) *Session {
	t.Helper()
	return newSizedSession(t, testSize, memoryLimit)
}

func newSizedSession(t *testing.T, size int, memoryLimit int64) *Session {
	t.Helper()
	s, err := New(Config{
		Width:       size,
		Height:      size,
		Palettes:    palette.New(16),
		Scheme:      palette.Rainbow,
		MemoryLimit: memoryLimit,
		RenderHelp:  blankHelp,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		s.Stop()
		wait(t, s)
	})
	return s
}

func wait(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

func draw(t *testing.T, s *Session) {
	t.Helper()
	if err := s.RequestDraw(); err != nil {
		t.Fatalf("RequestDraw: %v", err)
	}
	wait(t, s)
}

func started(t *testing.T, memoryLimit int64) *Session {
	t.Helper()
	s := newTestSession(t, memoryLimit)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	wait(t, s)
	return s
}

func current(t *testing.T, s *Session) View {
	t.Helper()
	v, ok := s.Current()
	if !ok {
		t.Fatal("no current drawing")
	}
	return v
}

func TestStart(t *testing.T) {
	s := started(t, 0)

	v := current(t, s)
	if v.Kind != fractal.KindMandelbrot {
		t.Fatalf("current is %s, want mandelbrot", v.Kind)
	}
	if v.MaxIterations != InitialIterations {
		t.Errorf("iterations %d, want %d", v.MaxIterations, InitialIterations)
	}
	if cmp.Diff(InitialRect, v.Rect) != "" {
		t.Errorf("rect %s, want %s", v.Rect, InitialRect)
	}
	want := fractal.State{HasPrevious: true, CanDelete: true}
	if d := cmp.Diff(want, s.State()); d != "" {
		t.Error(d)
	}
	f := s.Fields()
	if f.RMin != "-2.5000" || f.IMax != "2.0000" || f.Iterations != "33" {
		t.Errorf("fields %+v", f)
	}
	if _, st2 := s.Status(); st2 != "100% Complete." {
		t.Errorf("status %q", st2)
	}
	if s.Progress() != 100 {
		t.Errorf("progress %d", s.Progress())
	}
}

func TestRequestDrawWhileRunning(t *testing.T) {
	// large enough to pass a cancellation check, slow enough to still run
	s := newSizedSession(t, 200, 0)
	if err := s.SetIterations(1000000); err != nil {
		t.Fatal(err)
	}
	if err := s.RequestDraw(); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()
	if !before.State.Running {
		t.Fatal("not running after RequestDraw")
	}

	if err := s.RequestDraw(); !errors.Is(err, ErrBusy) {
		t.Fatalf("second RequestDraw: got %v, want ErrBusy", err)
	}
	after := s.Snapshot()
	after.Progress = before.Progress
	if d := cmp.Diff(before, after); d != "" {
		t.Errorf("state changed by a rejected draw:\n%s", d)
	}

	if !s.Stop() {
		t.Fatal("Stop found nothing running")
	}
	wait(t, s)
	if _, ok := s.Current(); ok {
		t.Error("a stopped drawing became current")
	}
	if _, st2 := s.Status(); st2 != "Stopped." {
		t.Errorf("status %q, want Stopped.", st2)
	}
	if s.State().Running {
		t.Error("still running after Stop")
	}
	if s.MemoryInUse() != 0 {
		t.Errorf("stopped drawing holds %d bytes", s.MemoryInUse())
	}
}

func TestDeleteOnlyDrawing(t *testing.T) {
	s := newTestSession(t, 0)
	if err := s.Delete(); !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("Delete with no drawing: %v", err)
	}
	if err := s.ShowHelp(); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(); !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("Delete of the only drawing: %v", err)
	}
	if v := current(t, s); v.Kind != fractal.KindHelp {
		t.Errorf("current is %s after a rejected delete", v.Kind)
	}
}

func TestPreviousNextRestoresZoom(t *testing.T) {
	s := started(t, 0)
	fields := s.Fields()
	zoom := image.Rect(5, 5, 20, 20)
	if err := s.SetZoom(zoom); err != nil {
		t.Fatal(err)
	}

	if err := s.Previous(); err != nil {
		t.Fatal(err)
	}
	v := current(t, s)
	if v.Kind != fractal.KindHelp || v.Zoom != nil {
		t.Fatalf("after Previous: %s with zoom %v", v.Kind, v.Zoom)
	}
	if err := s.Previous(); !errors.Is(err, ErrNoPrevious) {
		t.Errorf("Previous at the start: %v", err)
	}

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	v = current(t, s)
	if v.Kind != fractal.KindMandelbrot || v.Zoom == nil || *v.Zoom != zoom {
		t.Fatalf("after Next: %s with zoom %v, want %v", v.Kind, v.Zoom, zoom)
	}
	if d := cmp.Diff(fields, s.Fields()); d != "" {
		t.Error(d)
	}
	if err := s.Next(); !errors.Is(err, ErrNoNext) {
		t.Errorf("Next at the end: %v", err)
	}
}

func TestZoomDraw(t *testing.T) {
	s := started(t, 0)
	gen := s.Generation()
	if err := s.SetZoom(image.Rect(30, 30, 10, 10)); err != nil {
		t.Fatal(err)
	}
	draw(t, s)

	if s.Generation() == gen {
		t.Error("generation unchanged by a completed drawing")
	}
	v := current(t, s)
	if v.Zoom != nil {
		t.Errorf("new drawing has zoom %v", v.Zoom)
	}
	// pixels 10..30 of a 4 wide view, 0.1 per pixel
	want := fractal.ComplexRectangle{RMin: -1.5, RMax: 0.5, IMin: -1, IMax: 1}
	if d := cmp.Diff(want, v.Rect, cmp.Comparer(func(a, b float64) bool { return a-b < 1e-9 && b-a < 1e-9 })); d != "" {
		t.Error(d)
	}
	if z := s.ZoomFactor(); z < 1.99 || z > 2.01 {
		t.Errorf("zoom factor %g, want 2", z)
	}

	// the zoom is kept with the drawing it was made on
	if err := s.Previous(); err != nil {
		t.Fatal(err)
	}
	if v := current(t, s); v.Zoom == nil || *v.Zoom != image.Rect(10, 10, 30, 30) {
		t.Errorf("previous drawing zoom %v", v.Zoom)
	}
}

func TestZoomValidation(t *testing.T) {
	s := newTestSession(t, 0)
	if err := s.SetZoom(image.Rect(0, 0, 10, 10)); !errors.Is(err, ErrNoDrawing) {
		t.Errorf("zoom without drawing: %v", err)
	}
	if err := s.ShowHelp(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetZoom(image.Rect(0, 0, 10, 10)); !errors.Is(err, ErrZoomDisabled) {
		t.Errorf("zoom on help: %v", err)
	}

	s = started(t, 0)
	if err := s.SetZoom(image.Rect(0, 0, 10, 10)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetZoom(image.Rect(0, 0, 2, 10)); !IsValidation(err) {
		t.Errorf("thin zoom: %v", err)
	}
	if v := current(t, s); v.Zoom != nil {
		t.Errorf("rejected zoom left %v behind", v.Zoom)
	}
}

func TestShowHelpSingleton(t *testing.T) {
	s := started(t, 0)
	s.mu.Lock()
	help := s.help
	s.mu.Unlock()

	if err := s.ShowHelp(); err != nil {
		t.Fatal(err)
	}
	if err := s.ShowHelp(); err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	n := s.history.Count(fractal.KindHelp)
	same := s.help == help && s.current == help
	s.mu.Unlock()
	if n != 0 || !same {
		t.Fatalf("help in history %d times, reused %v", n, same)
	}

	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if err := s.ShowHelp(); err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	n = s.history.Count(fractal.KindHelp)
	size := s.history.Len()
	s.mu.Unlock()
	if n != 0 || size != 1 {
		t.Errorf("help in history %d times, history size %d", n, size)
	}
}

func TestRecolor(t *testing.T) {
	s := started(t, 0)
	before := current(t, s)
	fields := s.Fields()

	if err := s.SetScheme(palette.Zebra); err != nil {
		t.Fatal(err)
	}
	draw(t, s)

	after := current(t, s)
	if after.Scheme != palette.Zebra || after.Rect != before.Rect || after.MaxIterations != before.MaxIterations {
		t.Fatalf("recolored drawing %+v differs from %+v", after, before)
	}
	if d := cmp.Diff(fields, s.Fields()); d != "" {
		t.Error(d)
	}

	colors, _ := palette.New(16).Colors(palette.Zebra)
	full := fractal.NewMandelbrot(before.Rect, before.MaxIterations, palette.Zebra)
	c, err := render.NewCalculator(full, render.Canvas{Width: testSize, Height: testSize, Colors: colors})
	if err != nil {
		t.Fatal(err)
	}
	if res := c.Run(context.Background()); res.Outcome != render.Completed {
		t.Fatal(res.Err)
	}
	if !bytes.Equal(after.Image.Pix, full.Image().Pix) {
		t.Error("recolored image differs from a full calculation")
	}
}

func TestUnknownScheme(t *testing.T) {
	s := newTestSession(t, 0)
	if err := s.SetScheme("sepia"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("got %v", err)
	}
}

func TestJuliaStartsFromFullView(t *testing.T) {
	s := started(t, 0)
	if err := s.PickJuliaPoint(20, 20); err != nil {
		t.Fatal(err)
	}
	f := s.Fields()
	if f.JuliaR != "-0.5000" || f.JuliaI != "0.0000" {
		t.Errorf("julia fields %q %q", f.JuliaR, f.JuliaI)
	}

	s.SetJulia(true)
	if err := s.SetZoom(image.Rect(0, 0, 10, 10)); !errors.Is(err, ErrZoomDisabled) {
		t.Errorf("zoom on mandelbrot in julia mode: %v", err)
	}
	draw(t, s)

	v := current(t, s)
	if v.Kind != fractal.KindJulia {
		t.Fatalf("current is %s", v.Kind)
	}
	if v.Rect != InitialJuliaRect {
		t.Errorf("rect %s, want %s", v.Rect, InitialJuliaRect)
	}
	if v.JuliaPoint != (fractal.ComplexPoint{Real: -0.5, Imag: 0}) {
		t.Errorf("julia point %s", v.JuliaPoint)
	}
	if v.MaxIterations != GuessIterations(1, true) {
		t.Errorf("iterations %d, want %d", v.MaxIterations, GuessIterations(1, true))
	}
	if err := s.PickJuliaPoint(1, 1); !errors.Is(err, ErrNotMandelbrot) {
		t.Errorf("pick on julia: %v", err)
	}
}

func TestRequestDrawValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*fractal.Fields)
		julia bool
	}{
		{"real order", func(f *fractal.Fields) { f.RMin, f.RMax = "1", "-1" }, false},
		{"imaginary order", func(f *fractal.Fields) { f.IMin = f.IMax }, false},
		{"not a number", func(f *fractal.Fields) { f.RMin = "left" }, false},
		{"infinite", func(f *fractal.Fields) { f.RMax = "Inf" }, false},
		{"iterations", func(f *fractal.Fields) { f.Iterations = "lots" }, false},
		{"zero iterations", func(f *fractal.Fields) { f.Iterations = "0" }, false},
		{"julia point", func(f *fractal.Fields) { f.JuliaI = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := started(t, 0)
			gen := s.Generation()
			f := s.Fields()
			tt.edit(&f)
			s.SetFields(f)
			s.SetJulia(tt.julia)

			err := s.RequestDraw()
			if !IsValidation(err) {
				t.Fatalf("got %v, want a validation error", err)
			}
			st := s.State()
			if st.Running || s.Generation() != gen || !st.HasPrevious || st.HasNext {
				t.Errorf("state changed: %+v", st)
			}
		})
	}
}

func TestOutOfMemory(t *testing.T) {
	img := fractal.ImageBytes(testSize, testSize)
	drawing := img + fractal.GridBytes(testSize, testSize)
	// help, the first view and one zoom fit, a second zoom does not
	s := started(t, img+2*drawing+drawing/2)

	zoomDraw := func() {
		if err := s.SetZoom(image.Rect(10, 10, 30, 30)); err != nil {
			t.Fatal(err)
		}
		draw(t, s)
	}
	zoomDraw()
	if s.State().OutOfMemory {
		t.Fatal("out of memory too early")
	}
	zoomDraw()
	if !s.State().OutOfMemory {
		t.Fatal("not out of memory")
	}
	if _, st2 := s.Status(); st2 != "Out of Memory!" {
		t.Errorf("status %q", st2)
	}
	if err := s.RequestDraw(); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("draw while out of memory: %v", err)
	}

	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if s.State().OutOfMemory {
		t.Error("still out of memory after Delete")
	}
	if _, st2 := s.Status(); st2 != "Deleted." {
		t.Errorf("status %q", st2)
	}
	if got := s.MemoryInUse(); got != img+drawing {
		t.Errorf("memory in use %d, want %d", got, img+drawing)
	}
	draw(t, s)
	if s.State().OutOfMemory {
		t.Error("draw after Delete ran out of memory")
	}
}

func TestDeleteTakesNextFirst(t *testing.T) {
	s := started(t, 0)
	first := current(t, s)
	if err := s.SetZoom(image.Rect(10, 10, 30, 30)); err != nil {
		t.Fatal(err)
	}
	draw(t, s)
	if err := s.Previous(); err != nil {
		t.Fatal(err)
	}
	// help is current and the first view tops Next
	if err := s.Previous(); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(); err != nil {
		t.Fatal(err)
	}
	if v := current(t, s); v.Rect != first.Rect {
		t.Errorf("replacement %s, want the first view from Next", v.Rect)
	}
	s.mu.Lock()
	help := s.help
	s.mu.Unlock()
	if help != nil {
		t.Error("deleted help drawing is still cached")
	}
}

func TestGotoLandmark(t *testing.T) {
	s := started(t, 0)
	if err := s.GotoLandmark("atlantis"); !errors.Is(err, ErrUnknownLandmark) {
		t.Errorf("got %v", err)
	}
	s.SetJulia(true)
	if err := s.GotoLandmark("seahorse-valley"); err != nil {
		t.Fatal(err)
	}
	f := s.Fields()
	if f.RMin != "-0.80000" || f.RMax != "-0.70000" {
		t.Errorf("fields %+v", f)
	}
	if s.State().Julia {
		t.Error("landmark left julia mode on")
	}
	draw(t, s)
	v := current(t, s)
	if v.Rect.RMin > -0.8 || v.Rect.RMax < -0.7 {
		t.Errorf("drawn rect %s does not cover the landmark", v.Rect)
	}
}

func TestDescribePoint(t *testing.T) {
	s := newTestSession(t, 0)
	if _, err := s.DescribePoint(0, 0); !errors.Is(err, ErrNoDrawing) {
		t.Errorf("got %v", err)
	}
	s = started(t, 0)
	got, err := s.DescribePoint(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Point: -2.5000 + 2.0000i" {
		t.Errorf("got %q", got)
	}
	if _, err := s.DescribePoint(-1, 0); !errors.Is(err, ErrOutsideImage) {
		t.Errorf("outside: %v", err)
	}
}

func TestApply(t *testing.T) {
	s := started(t, 0)
	if err := s.Apply(fractal.Command{Op: "fly"}); err == nil {
		t.Error("unknown op accepted")
	}
	if err := s.Apply(fractal.Command{Op: fractal.OpFields}); !IsValidation(err) {
		t.Errorf("fields without fields: %v", err)
	}
	z := image.Rect(1, 1, 20, 20)
	if err := s.Apply(fractal.Command{Op: fractal.OpZoom, Zoom: &z}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(fractal.Command{Op: fractal.OpClearZoom}); err != nil {
		t.Fatal(err)
	}
	if v := current(t, s); v.Zoom != nil {
		t.Errorf("zoom %v not cleared", v.Zoom)
	}
	if err := s.Apply(fractal.Command{Op: fractal.OpPrevious}); err != nil {
		t.Fatal(err)
	}
	if !s.State().Help {
		t.Error("previous did not reach help")
	}
}
