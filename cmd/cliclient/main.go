// cliclient is a command line client for the fractal explorer server.
// It optionally sets up a view, asks the server to draw it and saves the
// result as a PNG file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/client"
)

// main is the entry point for the CLI client.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	addr := flag.String("addr", ":8081", "server tcp address")
	landmark := flag.String("landmark", "", "landmark to draw, see -list")
	scheme := flag.String("scheme", "", "color scheme")
	julia := flag.Bool("julia", false, "draw the Julia set of the picked point")
	iterations := flag.Int("iterations", 0, "iteration cap, 0 keeps the server's")
	out := flag.String("o", "fractal.png", "output file")
	list := flag.Bool("list", false, "list landmarks and color schemes")
	timeout := flag.Duration("timeout", 5*time.Minute, "give up after this long")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	log.Printf("connecting to %s", *addr)
	c, err := client.Dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer c.Close()

	snap, err := c.Do(ctx, fractal.Command{Op: fractal.OpState})
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if *list {
		fmt.Println("landmarks:")
		for _, n := range snap.Landmarks {
			fmt.Println("  " + n)
		}
		fmt.Println("schemes:")
		for _, n := range snap.Schemes {
			fmt.Println("  " + n)
		}
		return nil
	}

	// a drawing may already be running
	if snap, err = waitIdle(ctx, c); err != nil {
		return err
	}

	var cmds []fractal.Command
	if *landmark != "" {
		cmds = append(cmds, fractal.Command{Op: fractal.OpLandmark, Landmark: *landmark})
	}
	if *scheme != "" {
		cmds = append(cmds, fractal.Command{Op: fractal.OpScheme, Scheme: *scheme})
	}
	cmds = append(cmds, fractal.Command{Op: fractal.OpJulia, Julia: *julia})
	for _, cmd := range cmds {
		if snap, err = c.Do(ctx, cmd); err != nil {
			return err
		}
	}
	if *iterations > 0 {
		f := snap.Fields
		f.Iterations = fmt.Sprint(*iterations)
		if _, err := c.Do(ctx, fractal.Command{Op: fractal.OpFields, Fields: &f}); err != nil {
			return err
		}
	}

	log.Printf("drawing")
	if _, err := c.Do(ctx, fractal.Command{Op: fractal.OpDraw}); err != nil {
		return err
	}
	if snap, err = waitIdle(ctx, c); err != nil {
		return err
	}
	log.Printf("%s %s", snap.Status2, snap.Status)

	snap, err = c.Do(ctx, fractal.Command{Op: fractal.OpImage})
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, snap.PNG, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	f := snap.Fields
	log.Printf("saved %q: real %s..%s imaginary %s..%s, %s iterations", *out, f.RMin, f.RMax, f.IMin, f.IMax, f.Iterations)
	return nil
}

// waitIdle polls the server until no drawing is running.
func waitIdle(ctx context.Context, c *client.Client) (fractal.Snapshot, error) {
	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()
	for {
		snap, err := c.Do(ctx, fractal.Command{Op: fractal.OpState})
		if err != nil {
			return snap, err
		}
		if !snap.State.Running {
			return snap, nil
		}
		log.Printf("%d%%", snap.Progress)
		select {
		case <-t.C:
		case <-ctx.Done():
			return snap, ctx.Err()
		}
	}
}
