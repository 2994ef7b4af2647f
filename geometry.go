package fractal

import "fmt"

// ComplexPoint is a point in the complex plane.
type ComplexPoint struct {
	Real, Imag float64
}

func (p ComplexPoint) String() string {
	return fmt.Sprintf("(%g, %g)", p.Real, p.Imag)
}

// ComplexRectangle is a region of the complex plane.
// Values built with NewComplexRectangle or RectFromPoints always satisfy
// RMin <= RMax and IMin <= IMax.
type ComplexRectangle struct {
	RMin, RMax float64
	IMin, IMax float64
}

// NewComplexRectangle returns the rectangle spanned by the given bounds,
// swapping each pair if given in reverse order.
func NewComplexRectangle(r1, r2, i1, i2 float64) ComplexRectangle {
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	if i1 > i2 {
		i1, i2 = i2, i1
	}
	return ComplexRectangle{RMin: r1, RMax: r2, IMin: i1, IMax: i2}
}

// RectFromPoints returns the rectangle with p1 and p2 as opposite corners.
func RectFromPoints(p1, p2 ComplexPoint) ComplexRectangle {
	return NewComplexRectangle(p1.Real, p2.Real, p1.Imag, p2.Imag)
}

// Normalize returns r with its bounds ordered.
func (r ComplexRectangle) Normalize() ComplexRectangle {
	return NewComplexRectangle(r.RMin, r.RMax, r.IMin, r.IMax)
}

func (r ComplexRectangle) Width() float64  { return r.RMax - r.RMin }
func (r ComplexRectangle) Height() float64 { return r.IMax - r.IMin }

// ExpandToFit grows r along one axis, symmetrically, until its aspect ratio
// matches that of a w×h pixel image. Degenerate sizes leave r unchanged.
func (r ComplexRectangle) ExpandToFit(w, h int) ComplexRectangle {
	if w == 0 || h == 0 {
		return r
	}
	cw, ch := r.Width(), r.Height()
	if cw == 0 || ch == 0 {
		return r
	}

	imageRatio := float64(w) / float64(h)
	complexRatio := cw / ch
	if imageRatio == complexRatio {
		return r
	}

	if imageRatio < complexRatio {
		// too wide: grow vertically
		diff := cw/imageRatio - ch
		if diff < 0 {
			diff = -diff
		}
		return NewComplexRectangle(r.RMin, r.RMax, r.IMin-diff/2, r.IMax+diff/2)
	}
	diff := ch*imageRatio - cw
	if diff < 0 {
		diff = -diff
	}
	return NewComplexRectangle(r.RMin-diff/2, r.RMax+diff/2, r.IMin, r.IMax)
}

func (r ComplexRectangle) String() string {
	return fmt.Sprintf("[%g, %g] x [%g, %g]i", r.RMin, r.RMax, r.IMin, r.IMax)
}

// PixelMapping converts pixel coordinates of a w×h image to points of the
// complex plane. Pixels are square: the horizontal step is used on both axes,
// and the y axis is flipped so that the imaginary part grows upwards.
type PixelMapping struct {
	rect  ComplexRectangle
	delta float64
	h     int
}

func NewPixelMapping(rect ComplexRectangle, w, h int) PixelMapping {
	return PixelMapping{
		rect:  rect,
		delta: rect.Width() / float64(w),
		h:     h,
	}
}

// Delta is the complex distance covered by one pixel.
func (m PixelMapping) Delta() float64 { return m.delta }

func (m PixelMapping) Point(x, y int) ComplexPoint {
	return ComplexPoint{
		Real: m.rect.RMin + float64(x)*m.delta,
		Imag: m.rect.IMin + float64(m.h-y)*m.delta,
	}
}
