package session

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	fractal "github.com/marben/fractal_explorer"
)

// MinScale is the number of decimal places shown at zoom factor 1.
const MinScale = 4

// Scale returns the number of decimal places used to show numbers at the
// given zoom factor. It grows by one per decade of zoom.
func Scale(zoomFactor float64) int {
	if zoomFactor < 1 || math.IsNaN(zoomFactor) {
		zoomFactor = 1
	}
	if math.IsInf(zoomFactor, 1) {
		zoomFactor = math.MaxFloat64
	}
	// floor(log10) read off the shortest decimal form; math.Log10 is
	// inexact at powers of ten
	s := strconv.FormatFloat(zoomFactor, 'e', -1, 64)
	exp, err := strconv.Atoi(s[strings.IndexByte(s, 'e')+1:])
	if err != nil {
		return MinScale
	}
	return exp + MinScale
}

var ten = big.NewInt(10)

// FormatFloat renders the exact decimal value of f with scale decimal
// places, rounding halves away from zero.
func FormatFloat(f float64, scale int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if scale < 0 {
		scale = 0
	}

	r := new(big.Rat).SetFloat64(f)
	neg := r.Sign() < 0
	r.Abs(r)

	// n = floor(|f| * 10^scale + 1/2)
	pow := new(big.Int).Exp(ten, big.NewInt(int64(scale)), nil)
	r.Mul(r, new(big.Rat).SetInt(pow))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	digits := n.String()
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}

	var sb strings.Builder
	if neg && n.Sign() != 0 {
		sb.WriteByte('-')
	}
	intPart := len(digits) - scale
	sb.WriteString(digits[:intPart])
	if scale > 0 {
		sb.WriteByte('.')
		sb.WriteString(digits[intPart:])
	}
	return sb.String()
}

// FormatPoint renders p as "a + bi" or "a - bi".
func FormatPoint(p fractal.ComplexPoint, scale int) string {
	if p.Imag < 0 {
		return FormatFloat(p.Real, scale) + " - " + FormatFloat(-p.Imag, scale) + "i"
	}
	return FormatFloat(p.Real, scale) + " + " + FormatFloat(p.Imag, scale) + "i"
}

// DeepZoom reports whether adjacent pixels of a w pixels wide image of rect
// can no longer be told apart: rMin and rMin plus half a pixel render to
// the same decimal string at the given scale.
//
// The test is made at display precision, not at float64 precision. An
// image wider than about 4000 pixels therefore warns from a zoom factor of
// roughly 10, long before float64 runs out of digits; the drawing itself is
// still computed at full precision.
func DeepZoom(rect fractal.ComplexRectangle, w int, scale int) bool {
	halfPixel := rect.Width() / (float64(w) * 2)
	return FormatFloat(rect.RMin, scale) == FormatFloat(rect.RMin+halfPixel, scale)
}
