package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/session"
)

const (
	statusHeight = 64
	lineHeight   = 16
)

var (
	dragColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	zoomColor = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	panelBg   = color.RGBA{R: 20, G: 25, B: 35, A: 255}
)

type game struct {
	sess *session.Session
	w, h int

	// uploaded copy of the current image
	img    *ebiten.Image
	imgGen uint64
	imgSrc *image.RGBA

	// drag start on the drawing of generation dragGen
	drag    *image.Point
	dragGen uint64

	landmark int
	message  string

	// results of save dialogs running in the background
	saved chan error
}

func newGame(sess *session.Session) *game {
	w, h := sess.Size()
	return &game{sess: sess, w: w, h: h, saved: make(chan error, 1)}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h + statusHeight
}

func (g *game) Update() error {
	select {
	case err := <-g.saved:
		g.report(err)
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.keys()
	g.mouse()
	return nil
}

func (g *game) keys() {
	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		err = g.sess.RequestDraw()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.sess.Stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft), inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		err = g.sess.Previous()
	case inpututil.IsKeyJustPressed(ebiten.KeyRight), inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		err = g.sess.Next()
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyX):
		err = g.sess.Delete()
	case inpututil.IsKeyJustPressed(ebiten.KeyH), inpututil.IsKeyJustPressed(ebiten.KeyF1):
		err = g.sess.ShowHelp()
	case inpututil.IsKeyJustPressed(ebiten.KeyJ):
		g.sess.SetJulia(!g.sess.State().Julia)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		err = g.sess.SetScheme(next(g.sess.Schemes(), g.sess.Scheme()))
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		names := fractal.LandmarkNames()
		name := names[g.landmark%len(names)]
		g.landmark++
		if err = g.sess.GotoLandmark(name); err == nil {
			err = g.sess.RequestDraw()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		err = g.scaleIterations(2, 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		err = g.scaleIterations(1, 2)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.drag = nil
		g.sess.ClearZoom()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.save()
	default:
		return
	}
	g.message = ""
	g.report(err)
}

func (g *game) scaleIterations(mul, div int) error {
	n, err := strconv.Atoi(g.sess.Fields().Iterations)
	if err != nil {
		n = session.InitialIterations
	}
	n = n * mul / div
	if n < 1 {
		n = 1
	}
	return g.sess.SetIterations(n)
}

func (g *game) mouse() {
	x, y := ebiten.CursorPosition()
	inside := x >= 0 && y >= 0 && x < g.w && y < g.h

	// a new drawing interrupts a drag on the old one
	if g.drag != nil && g.sess.Generation() != g.dragGen {
		g.drag = nil
	}

	if inside && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.drag = &image.Point{X: x, Y: y}
		g.dragGen = g.sess.Generation()
	}
	if inside && g.drag != nil {
		if s, err := g.sess.DescribePoint(x, y); err == nil {
			g.message = s
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.drag != nil {
		start := *g.drag
		g.drag = nil
		end := clamp(image.Point{X: x, Y: y}, g.w, g.h)
		var err error
		if start == end {
			err = g.sess.PickJuliaPoint(end.X, end.Y)
		} else {
			err = g.sess.SetZoom(image.Rectangle{Min: start, Max: end})
		}
		g.report(err)
	}
}

func clamp(p image.Point, w, h int) image.Point {
	p.X = min(max(p.X, 0), w)
	p.Y = min(max(p.Y, 0), h)
	return p
}

// save asks for a file name and writes the current image as PNG. The dialog
// blocks, so it runs outside the game loop.
func (g *game) save() {
	v, ok := g.sess.Current()
	if !ok || v.Image == nil {
		g.report(errors.New("nothing to save"))
		return
	}
	img := v.Image
	go func() {
		g.saved <- savePNG(img)
	}()
}

func savePNG(img *image.RGBA) error {
	filename, err := zenity.SelectFileSave(
		zenity.Title("Save Drawing"),
		zenity.Filename("fractal.png"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "PNG image",
			Patterns: []string{"*.png"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return f.Close()
}

func (g *game) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrBusy):
		g.message = "still drawing, press S to stop"
	default:
		g.message = "Error: " + err.Error()
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	v, ok := g.sess.Current()
	if ok && v.Image != nil {
		if g.img == nil || v.Generation != g.imgGen || v.Image != g.imgSrc {
			if g.img != nil {
				g.img.Deallocate()
			}
			g.img = ebiten.NewImageFromImage(v.Image)
			g.imgGen, g.imgSrc = v.Generation, v.Image
		}
		screen.DrawImage(g.img, nil)
	}

	if ok && v.Zoom != nil {
		strokeRect(screen, *v.Zoom, zoomColor)
	}
	if g.drag != nil {
		x, y := ebiten.CursorPosition()
		strokeRect(screen, image.Rectangle{Min: *g.drag, Max: clamp(image.Point{X: x, Y: y}, g.w, g.h)}.Canon(), dragColor)
	}

	g.drawStatus(screen)
}

func strokeRect(screen *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), 1, c, false)
}

func (g *game) drawStatus(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, float32(g.h), float32(g.w), statusHeight, panelBg, false)

	snap := g.sess.Snapshot()
	status2 := snap.Status2
	if snap.State.Running {
		status2 = fmt.Sprintf("%d%% Complete.", snap.Progress)
	}
	f := snap.Fields
	lines := []string{
		status2 + " " + snap.Status,
		fmt.Sprintf("%s..%s  %s..%s", f.RMin, f.RMax, f.IMin, f.IMax),
		fmt.Sprintf("iterations %s  colors %s%s", f.Iterations, snap.Scheme, julia(snap)),
		g.message,
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, 4, g.h+i*lineHeight)
	}
}

func julia(s fractal.Snapshot) string {
	if !s.State.Julia {
		return ""
	}
	return fmt.Sprintf("  julia %s, %s", s.Fields.JuliaR, s.Fields.JuliaI)
}

// next returns the name after cur in names, wrapping around.
func next(names []string, cur string) string {
	for i, n := range names {
		if n == cur {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}
