// fractalterm explores the Mandelbrot and Julia sets in a terminal. Each
// character cell shows two pixels with the upper half block.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/internal/config"
	"github.com/marben/fractal_explorer/session"
)

// log output is discarded while the UI owns the terminal, so errors are
// printed directly
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "run: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logFile := flag.String("log", "", "write session events to this file")
	flag.Parse()

	// the terminal belongs to the UI, so logs only go to a file
	if *logFile != "" {
		f, err := tea.LogToFile(*logFile, "fractalterm")
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		fractal.SetLogger(slog.New(slog.NewTextHandler(f, nil)))
	} else {
		log.SetOutput(io.Discard)
	}

	sess, err := session.New(cfg.SessionConfig())
	if err != nil {
		return fmt.Errorf("session.New: %w", err)
	}
	if err := sess.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	p := tea.NewProgram(
		newModel(sess),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return err
	}
	sess.Stop()
	return nil
}
