package fractal

import (
	"fmt"
	"image"
)

// Kind tells which fractal a Drawing shows.
type Kind int

const (
	KindMandelbrot Kind = iota
	KindJulia
	KindHelp
)

func (k Kind) String() string {
	switch k {
	case KindMandelbrot:
		return "mandelbrot"
	case KindJulia:
		return "julia"
	case KindHelp:
		return "help"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Black marks an in-set pixel in an IndexGrid.
const Black int32 = -1

// IndexGrid holds one palette index per pixel. The index does not depend on
// the colour scheme, so a grid can be repainted with any palette of the
// same size.
type IndexGrid struct {
	W, H int
	idx  []int32
}

func NewIndexGrid(w, h int) *IndexGrid {
	return &IndexGrid{W: w, H: h, idx: make([]int32, w*h)}
}

func (g *IndexGrid) At(x, y int) int32     { return g.idx[y*g.W+x] }
func (g *IndexGrid) Set(x, y int, v int32) { g.idx[y*g.W+x] = v }

// Clone returns a deep copy of g.
func (g *IndexGrid) Clone() *IndexGrid {
	c := &IndexGrid{W: g.W, H: g.H, idx: make([]int32, len(g.idx))}
	copy(c.idx, g.idx)
	return c
}

// Bytes is the memory held by g.
func (g *IndexGrid) Bytes() int64 { return int64(len(g.idx)) * 4 }

// ImageBytes is the memory needed by a w×h RGBA buffer.
func ImageBytes(w, h int) int64 { return int64(w) * int64(h) * 4 }

// GridBytes is the memory needed by a w×h IndexGrid.
func GridBytes(w, h int) int64 { return int64(w) * int64(h) * 4 }

// Drawing is one view of a fractal together with its rendered pixels.
//
// A Drawing is built by the session, filled by a calculator and afterwards
// changed only through its setters. It owns its image and index grid until
// Release is called.
type Drawing struct {
	kind          Kind
	rect          ComplexRectangle
	maxIterations int
	juliaPoint    ComplexPoint
	scheme        string

	img     *image.RGBA
	zoom    *image.Rectangle
	indices *IndexGrid

	// reserved is the number of budget bytes currently held
	reserved int64
}

func NewMandelbrot(rect ComplexRectangle, maxIterations int, scheme string) *Drawing {
	return &Drawing{kind: KindMandelbrot, rect: rect.Normalize(), maxIterations: maxIterations, scheme: scheme}
}

func NewJulia(rect ComplexRectangle, maxIterations int, scheme string, c ComplexPoint) *Drawing {
	return &Drawing{kind: KindJulia, rect: rect.Normalize(), maxIterations: maxIterations, scheme: scheme, juliaPoint: c}
}

// NewHelp wraps an already rendered help screen. The image is charged to b.
func NewHelp(rect ComplexRectangle, maxIterations int, scheme string, img *image.RGBA, b *Budget) (*Drawing, error) {
	n := ImageBytes(img.Rect.Dx(), img.Rect.Dy())
	if err := b.Reserve(n); err != nil {
		return nil, err
	}
	return &Drawing{kind: KindHelp, rect: rect.Normalize(), maxIterations: maxIterations, scheme: scheme, img: img, reserved: n}, nil
}

func (d *Drawing) Kind() Kind                   { return d.kind }
func (d *Drawing) Rect() ComplexRectangle       { return d.rect }
func (d *Drawing) MaxIterations() int           { return d.maxIterations }
func (d *Drawing) JuliaPoint() ComplexPoint     { return d.juliaPoint }
func (d *Drawing) Scheme() string               { return d.scheme }
func (d *Drawing) Image() *image.RGBA           { return d.img }
func (d *Drawing) Indices() *IndexGrid          { return d.indices }
func (d *Drawing) SetMaxIterations(n int)       { d.maxIterations = n }
func (d *Drawing) SetIndices(g *IndexGrid)      { d.indices = g }
func (d *Drawing) SetImage(img *image.RGBA)     { d.img = img }
func (d *Drawing) Reserved() int64              { return d.reserved }
func (d *Drawing) AddReserved(n int64)          { d.reserved += n }
func (d *Drawing) SameKind(other *Drawing) bool { return other != nil && d.kind == other.kind }
func (d *Drawing) IsHelp() bool                 { return d.kind == KindHelp }

// Zoom returns the pixel-space zoom rectangle captured with the drawing.
func (d *Drawing) Zoom() (image.Rectangle, bool) {
	if d.zoom == nil {
		return image.Rectangle{}, false
	}
	return *d.zoom, true
}

// SetZoom stores a copy of z, or clears the zoom when z is nil.
func (d *Drawing) SetZoom(z *image.Rectangle) {
	if z == nil {
		d.zoom = nil
		return
	}
	c := *z
	d.zoom = &c
}

// Release drops the image and the index grid and gives their memory back to b.
func (d *Drawing) Release(b *Budget) {
	b.Release(d.reserved)
	d.reserved = 0
	d.img = nil
	d.indices = nil
}

func (d *Drawing) String() string {
	s := fmt.Sprintf("%s %s iterations=%d scheme=%q", d.kind, d.rect, d.maxIterations, d.scheme)
	if d.kind == KindJulia {
		s += fmt.Sprintf(" c=%s", d.juliaPoint)
	}
	return s
}
