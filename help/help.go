// Package help renders the help screen shown as the Help drawing.
package help

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	background = color.RGBA{R: 0x10, G: 0x12, B: 0x20, A: 0xff}
	foreground = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
)

const (
	fontSize   = 18.0
	lineHeight = 25.0
	paragraph  = 20.0
)

// Text is the help screen, one paragraph per element.
var Text = [][]string{
	{
		"Drag a rectangle over the picture to zoom in.",
		"The more you zoom, the more iterations you'll need.",
		"More iterations make the image more detailed,",
		"but it takes longer to compute.",
		"Also, the number of iterations affects the color.",
		"You may change the default number of iterations.",
	},
	{
		"To draw a Julia Set, switch on Julia mode,",
		"and then select a Julia Set point by clicking",
		"over a point in a Mandelbrot Set image.",
		"Different points create different Julia Sets.",
		"You may also type the image parameters.",
	},
	{
		"Previous and Next walk through your drawings.",
		"Try using different color mappings too.",
		"Have fun exploring the wonderful world of fractals !!!",
	},
}

// Render draws the welcome line followed by Text into a new w×h image.
func Render(w, h int, welcome string) (*image.RGBA, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	dc := gg.NewContext(w, h)
	dc.SetColor(background)
	dc.Clear()
	dc.SetColor(foreground)
	dc.SetFontFace(face)

	y := 20.0
	dc.DrawString(welcome, 1, y)
	for _, para := range Text {
		y += paragraph
		for _, line := range para {
			y += lineHeight
			dc.DrawString(line, 1, y)
		}
	}

	return toRGBA(dc.Image()), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
