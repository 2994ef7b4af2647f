// fractalgui explores the Mandelbrot and Julia sets in a window. Drag a
// rectangle to zoom, click a Mandelbrot point to pick a Julia point.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/internal/config"
	"github.com/marben/fractal_explorer/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	verbose := flag.Bool("v", false, "log session events")
	flag.Parse()

	if *verbose {
		fractal.SetLogger(slog.Default())
	}

	sess, err := session.New(cfg.SessionConfig())
	if err != nil {
		return fmt.Errorf("session.New: %w", err)
	}
	if err := sess.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer sess.Stop()

	g := newGame(sess)
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Fractal Explorer - Enter: draw, H: help, P: save, Q: quit")

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
