// Package palette builds the named colour schemes a session paints with.
// Every scheme of a Table has the same number of colours.
package palette

import (
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Scheme names.
const (
	BlackAndWhite = "black & white"
	BlueIce       = "blue ice"
	Funky         = "funky"
	Pastel        = "pastel"
	Psychedelic   = "psychedelic"
	PurpleHaze    = "purple haze"
	Radical       = "radical"
	Rainbow       = "rainbow"
	Rainbows      = "rainbows"
	Scintillation = "scintillation"
	Warped        = "warped"
	Wild          = "wild"
	Zebra         = "zebra"
)

// Default is the scheme selected at start-up.
const Default = Rainbow

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

// Table holds every scheme for one palette size.
type Table struct {
	n       int
	schemes map[string][]color.RGBA
}

// New builds all schemes with n colours each. n must be positive.
func New(n int) *Table {
	t := &Table{n: n, schemes: make(map[string][]color.RGBA)}
	for name, build := range builders {
		t.schemes[name] = build(n)
	}
	return t
}

// NumColors is the size of every scheme.
func (t *Table) NumColors() int { return t.n }

// Colors returns the colours of the named scheme.
func (t *Table) Colors(name string) ([]color.RGBA, bool) {
	c, ok := t.schemes[name]
	return c, ok
}

// Names lists the scheme names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.schemes))
	for name := range t.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var builders = map[string]func(n int) []color.RGBA{
	BlackAndWhite: func(n int) []color.RGBA {
		return fill(n, func(int) color.RGBA { return white })
	},
	BlueIce: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA {
			v := ramp(255, i, n)
			return rgb(v, v, 255)
		})
	},
	Funky:      reversed(func(i, n int) color.RGBA { return rgb(ramp(1024, i, n), ramp(512, i, n), ramp(256, i, n)) }),
	PurpleHaze: reversed(func(i, n int) color.RGBA { return rgb(255, ramp(255, i, n), 255) }),
	Warped:     reversed(func(i, n int) color.RGBA { return rgb(ramp(1024, i, n), ramp(256, i, n), ramp(512, i, n)) }),
	Pastel: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i*4, n), frac(i*2, n), 1) })
	},
	Psychedelic: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i*5, n), 1, frac(i*20, n)) })
	},
	Radical: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i*7, n), 1, frac(i*49, n)) })
	},
	Rainbow: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i, n), 1, 1) })
	},
	Rainbows: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i*5, n), 1, 1) })
	},
	Scintillation: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i*2, n), 1, frac(i*5, n)) })
	},
	Wild: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA { return hsv(frac(i, n), frac(i*2, n), frac(i*4, n)) })
	},
	Zebra: func(n int) []color.RGBA {
		return fill(n, func(i int) color.RGBA {
			if i%2 == 0 {
				return white
			}
			return black
		})
	},
}

func fill(n int, f func(i int) color.RGBA) []color.RGBA {
	c := make([]color.RGBA, n)
	for i := range c {
		c[i] = f(i)
	}
	return c
}

// reversed stores f(i) at position n-1-i.
func reversed(f func(i, n int) color.RGBA) func(n int) []color.RGBA {
	return func(n int) []color.RGBA {
		c := make([]color.RGBA, n)
		for i := range c {
			c[n-1-i] = f(i, n)
		}
		return c
	}
}

// ramp scales i/n to [0, scale) and wraps it into a colour channel.
func ramp(scale, i, n int) uint8 {
	return uint8(int(float64(scale)*float64(i)/float64(n)) % 255)
}

// frac returns the fractional part of a/n. Channels that grow faster than
// the palette wrap around, which gives the banded schemes their stripes.
func frac(a, n int) float64 {
	v := float64(a) / float64(n)
	return v - math.Floor(v)
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// hsv converts hue, saturation and value in [0,1] to an opaque colour.
func hsv(h, s, v float64) color.RGBA {
	r, g, b := colorful.Hsv(h*360, s, v).Clamped().RGB255()
	return rgb(r, g, b)
}
