package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"strings"
	"time"

	fractal "github.com/marben/fractal_explorer"
)

// CheckEvery is the number of pixels between two cancellation checks.
const CheckEvery = 2048

// Outcome is the terminal state of a calculation.
type Outcome int

const (
	Completed Outcome = iota
	Cancelled
	OutOfMemory
	Internal
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case OutOfMemory:
		return "out of memory"
	case Internal:
		return "internal error"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is produced exactly once by Calculator.Run.
type Result struct {
	Outcome Outcome
	// Drawing is the finished drawing, set only when Outcome is Completed.
	Drawing *fractal.Drawing
	Err     error
	Elapsed time.Duration
}

// Canvas describes the fixed output of a session: image size, palette and
// the memory budget the buffers are charged to.
type Canvas struct {
	Width, Height int
	Colors        []color.RGBA
	Budget        *fractal.Budget
}

var black = color.RGBA{A: 255}

// Calculator fills a drawing's image and colour-index grid.
//
// A standard calculator evaluates every pixel. A recolor calculator copies
// the indices of a previous drawing of the same view and only looks up
// the new palette.
type Calculator struct {
	drawing *fractal.Drawing
	canvas  Canvas
	eval    Evaluator
	cached  *fractal.IndexGrid

	// OnProgress, if set, is called from the calculating goroutine after
	// each finished column with the completed percentage.
	OnProgress func(percent int)
}

// NewCalculator returns a calculator evaluating d with the evaluator of its kind.
func NewCalculator(d *fractal.Drawing, cv Canvas) (*Calculator, error) {
	eval, err := EvaluatorFor(d)
	if err != nil {
		return nil, err
	}
	return NewEvaluatorCalculator(d, eval, cv)
}

// NewEvaluatorCalculator returns a calculator evaluating d with eval instead
// of the evaluator of its kind.
func NewEvaluatorCalculator(d *fractal.Drawing, eval Evaluator, cv Canvas) (*Calculator, error) {
	if eval == nil {
		return nil, ErrNoEvaluator
	}
	if err := checkCanvas(cv); err != nil {
		return nil, err
	}
	return &Calculator{drawing: d, canvas: cv, eval: eval}, nil
}

// NewRecolorCalculator returns a calculator repainting cached indices with
// the palette of cv.
func NewRecolorCalculator(d *fractal.Drawing, cached *fractal.IndexGrid, cv Canvas) (*Calculator, error) {
	if err := checkCanvas(cv); err != nil {
		return nil, err
	}
	if cached == nil {
		return nil, errors.New("recolor: no cached indices")
	}
	if cached.W != cv.Width || cached.H != cv.Height {
		return nil, fmt.Errorf("recolor: cached grid is %dx%d, canvas is %dx%d", cached.W, cached.H, cv.Width, cv.Height)
	}
	return &Calculator{drawing: d, canvas: cv, cached: cached}, nil
}

func checkCanvas(cv Canvas) error {
	if cv.Width <= 0 || cv.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", cv.Width, cv.Height)
	}
	if len(cv.Colors) == 0 {
		return errors.New("empty palette")
	}
	return nil
}

// Recolor reports whether c reuses cached indices instead of evaluating.
func (c *Calculator) Recolor() bool { return c.cached != nil }

// Drawing returns the drawing being calculated.
func (c *Calculator) Drawing() *fractal.Drawing { return c.drawing }

// Run calculates the drawing. It never panics: every failure is turned into
// a Result. The context is checked every CheckEvery pixels.
func (c *Calculator) Run(ctx context.Context) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.abandon()
			res = Result{Outcome: Internal, Err: fmt.Errorf("calculator: %v", r)}
			if isAllocFailure(r) {
				res = Result{Outcome: OutOfMemory, Err: fmt.Errorf("calculator: %v: %w", r, fractal.ErrOutOfMemory)}
			}
		}
		res.Elapsed = time.Since(start)
	}()

	img, grid, err := c.allocate()
	if err != nil {
		return Result{Outcome: OutOfMemory, Err: err}
	}

	if err := c.fill(ctx, img, grid); err != nil {
		c.abandon()
		return Result{Outcome: Cancelled, Err: err}
	}

	c.drawing.SetImage(img)
	c.drawing.SetIndices(grid)
	return Result{Outcome: Completed, Drawing: c.drawing}
}

func (c *Calculator) allocate() (*image.RGBA, *fractal.IndexGrid, error) {
	w, h := c.canvas.Width, c.canvas.Height
	n := fractal.ImageBytes(w, h) + fractal.GridBytes(w, h)
	if err := c.canvas.Budget.Reserve(n); err != nil {
		return nil, nil, err
	}
	c.drawing.AddReserved(n)
	return image.NewRGBA(image.Rect(0, 0, w, h)), fractal.NewIndexGrid(w, h), nil
}

// abandon gives back whatever the drawing reserved during this run.
func (c *Calculator) abandon() {
	c.drawing.Release(c.canvas.Budget)
}

func (c *Calculator) fill(ctx context.Context, img *image.RGBA, grid *fractal.IndexGrid) error {
	w, h := c.canvas.Width, c.canvas.Height
	maxIter := c.drawing.MaxIterations()
	numColors := len(c.canvas.Colors)
	mapping := fractal.NewPixelMapping(c.drawing.Rect(), w, h)

	counter := 0
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var idx int32
			if c.cached != nil {
				idx = c.cached.At(x, y)
			} else {
				idx = ColorIndex(c.eval(mapping.Point(x, y), maxIter), maxIter, numColors)
			}
			grid.Set(x, y, idx)
			img.SetRGBA(x, y, c.color(idx))

			counter++
			if counter%CheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
		c.progress(100 * x / w)
	}
	c.progress(100)
	return nil
}

func (c *Calculator) color(idx int32) color.RGBA {
	if idx == fractal.Black || int(idx) >= len(c.canvas.Colors) {
		return black
	}
	return c.canvas.Colors[idx]
}

func (c *Calculator) progress(p int) {
	if c.OnProgress != nil {
		c.OnProgress(p)
	}
}

// isAllocFailure reports whether a recovered panic came from a failed allocation.
func isAllocFailure(r any) bool {
	re, ok := r.(runtime.Error)
	if !ok {
		return false
	}
	msg := re.Error()
	return strings.Contains(msg, "makeslice") || strings.Contains(msg, "out of memory")
}
