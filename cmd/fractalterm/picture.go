package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

var zoomColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// grid maps character cells to image pixels. A cell covers one column of
// pixels and two rows, top and bottom.
type grid struct {
	cols, rows int
	imgW, imgH int
}

// pixel returns the image pixel shown by the given half of a cell.
func (g grid) pixel(col, row int, bottom bool) image.Point {
	half := 2 * row
	if bottom {
		half++
	}
	return image.Point{
		X: col * g.imgW / g.cols,
		Y: half * g.imgH / (2 * g.rows),
	}
}

// cell returns the cell showing pixel p.
func (g grid) cell(p image.Point) image.Point {
	return image.Point{X: p.X * g.cols / g.imgW, Y: p.Y * g.rows / g.imgH}
}

// render draws img with lipgloss colours. Cells on the border of zoom, if
// given, are painted white.
func (g grid) render(img *image.RGBA, zoom *image.Rectangle) string {
	var border image.Rectangle
	if zoom != nil {
		border = image.Rectangle{Min: g.cell(zoom.Min), Max: g.cell(zoom.Max)}
	}

	var sb strings.Builder
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			top := img.RGBAAt(g.pixel(col, row, false).X, g.pixel(col, row, false).Y)
			bottom := img.RGBAAt(g.pixel(col, row, true).X, g.pixel(col, row, true).Y)
			if zoom != nil && onBorder(border, col, row) {
				top, bottom = zoomColor, zoomColor
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top))).
				Background(lipgloss.Color(hex(bottom))).
				Render(halfBlock))
		}
		if row < g.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func onBorder(r image.Rectangle, col, row int) bool {
	inX := col >= r.Min.X && col <= r.Max.X
	inY := row >= r.Min.Y && row <= r.Max.Y
	return (inX && (row == r.Min.Y || row == r.Max.Y)) || (inY && (col == r.Min.X || col == r.Max.X))
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
