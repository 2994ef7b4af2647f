package fractal

import "testing"

func TestNewComplexRectangleOrdersBounds(t *testing.T) {
	got := NewComplexRectangle(1, -1, 3, 2)
	diff(t, ComplexRectangle{RMin: -1, RMax: 1, IMin: 2, IMax: 3}, got)

	got = RectFromPoints(ComplexPoint{Real: 0.5, Imag: -0.25}, ComplexPoint{Real: -0.5, Imag: 0.25})
	diff(t, ComplexRectangle{RMin: -0.5, RMax: 0.5, IMin: -0.25, IMax: 0.25}, got)
}

func TestExpandToFit(t *testing.T) {
	square := NewComplexRectangle(-2.5, 1.5, -2, 2)
	tests := []struct {
		name string
		w, h int
		want ComplexRectangle
	}{
		{"same ratio", 470, 470, square},
		{"wide image", 200, 100, ComplexRectangle{RMin: -4.5, RMax: 3.5, IMin: -2, IMax: 2}},
		{"tall image", 100, 200, ComplexRectangle{RMin: -2.5, RMax: 1.5, IMin: -4, IMax: 4}},
		{"degenerate", 0, 100, square},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff(t, tt.want, square.ExpandToFit(tt.w, tt.h))
		})
	}
}

func TestExpandToFitNeverShrinks(t *testing.T) {
	r := NewComplexRectangle(-0.8, -0.7, 0.05, 0.15)
	for _, size := range [][2]int{{470, 470}, {640, 480}, {300, 900}} {
		got := r.ExpandToFit(size[0], size[1])
		if got.RMin > r.RMin || got.RMax < r.RMax || got.IMin > r.IMin || got.IMax < r.IMax {
			t.Errorf("%dx%d: %s does not contain %s", size[0], size[1], got, r)
		}
	}
}

func TestPixelMapping(t *testing.T) {
	m := NewPixelMapping(NewComplexRectangle(0, 4, 0, 4), 4, 4)
	if m.Delta() != 1 {
		t.Fatalf("Delta() = %g, want 1", m.Delta())
	}
	tests := []struct {
		x, y int
		want ComplexPoint
	}{
		{0, 0, ComplexPoint{Real: 0, Imag: 4}},
		{4, 4, ComplexPoint{Real: 4, Imag: 0}},
		{1, 3, ComplexPoint{Real: 1, Imag: 1}},
	}
	for _, tt := range tests {
		diff(t, tt.want, m.Point(tt.x, tt.y))
	}
}

func TestLandmarks(t *testing.T) {
	names := LandmarkNames()
	if len(names) != 6 {
		t.Fatalf("got %d landmarks, want 6", len(names))
	}
	for _, n := range names {
		r, ok := Landmark(n)
		if !ok {
			t.Fatalf("Landmark(%q) not found", n)
		}
		if r.Width() <= 0 || r.Height() <= 0 {
			t.Errorf("%s: empty rectangle %s", n, r)
		}
	}
	if _, ok := Landmark("atlantis"); ok {
		t.Error("unknown landmark found")
	}
}
