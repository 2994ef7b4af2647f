package render

import (
	"errors"
	"fmt"

	fractal "github.com/marben/fractal_explorer"
)

// InSet is returned by an Evaluator for points whose orbit never escaped.
const InSet = 0

// ErrNoEvaluator is returned for drawings that are not computed, such as Help.
var ErrNoEvaluator = errors.New("no evaluator for drawing kind")

// Evaluator tests a point. It returns InSet, or the iteration in
// [1, maxIterations] at which |z| reached 2.
type Evaluator func(p fractal.ComplexPoint, maxIterations int) int

// Mandelbrot iterates z <- z*z + c from z = 0, with c the tested point.
func Mandelbrot(p fractal.ComplexPoint, maxIterations int) int {
	cR, cI := p.Real, p.Imag
	zR, zI := 0.0, 0.0
	for i := 1; i <= maxIterations; i++ {
		zR, zI = zR*zR-zI*zI+cR, 2*zR*zI+cI
		// |z| >= 2 without the square root
		if zR*zR+zI*zI >= 4 {
			return i
		}
	}
	return InSet
}

// Julia returns the evaluator of the Julia set for constant c. The tested
// point is the starting value of z.
func Julia(c fractal.ComplexPoint) Evaluator {
	cR, cI := c.Real, c.Imag
	return func(p fractal.ComplexPoint, maxIterations int) int {
		zR, zI := p.Real, p.Imag
		for i := 1; i <= maxIterations; i++ {
			zR, zI = zR*zR-zI*zI+cR, 2*zR*zI+cI
			if zR*zR+zI*zI >= 4 {
				return i
			}
		}
		return InSet
	}
}

var evaluators = map[fractal.Kind]func(d *fractal.Drawing) Evaluator{
	fractal.KindMandelbrot: func(*fractal.Drawing) Evaluator { return Mandelbrot },
	fractal.KindJulia:      func(d *fractal.Drawing) Evaluator { return Julia(d.JuliaPoint()) },
}

// EvaluatorFor picks the evaluator matching the drawing's kind.
func EvaluatorFor(d *fractal.Drawing) (Evaluator, error) {
	mk, ok := evaluators[d.Kind()]
	if !ok {
		return nil, fmt.Errorf("%s: %w", d.Kind(), ErrNoEvaluator)
	}
	return mk(d), nil
}

// ColorIndex maps an escape iteration to a palette index. In-set points map
// to fractal.Black.
func ColorIndex(escapedAt, maxIterations, numColors int) int32 {
	if escapedAt == InSet {
		return fractal.Black
	}
	idx := int(float64(numColors) * (1 - float64(escapedAt)/float64(maxIterations)))
	if idx >= numColors {
		idx = 0
	}
	return int32(idx)
}
