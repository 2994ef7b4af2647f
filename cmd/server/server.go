package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/internal/config"
	"github.com/marben/fractal_explorer/session"
)

// main is the entry point for the fractal explorer server.
// One session is shared by every connected client: they all see the same
// drawing and any of them can navigate.
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
	tcpAddr := flag.String("tcp", cfg.TCPAddr, "tcp listen address")
	httpAddr := flag.String("http", cfg.HTTPAddr, "http and websocket listen address")
	landmark := flag.String("landmark", "", "draw this landmark first instead of the whole set")
	verbose := flag.Bool("v", false, "log session events")
	flag.Parse()

	if *verbose {
		fractal.SetLogger(slog.Default())
	}

	sess, err := session.New(cfg.SessionConfig())
	if err != nil {
		return fmt.Errorf("session.New: %w", err)
	}
	if err := start(sess, *landmark); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := newHub(sess)
	go h.broadcast(ctx, 250*time.Millisecond)

	// TCP
	log.Printf("tcp listening on %s", *tcpAddr)
	tcpListener, err := net.Listen("tcp", *tcpAddr)
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}

	// WEBSOCKET
	websocketListener, httpServer := webServer(ctx, *httpAddr, sess)

	// httpServer provides index.html and image.png along with the websocket endpoint
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("httpServer: %v", err)
		}
	}()

	// both listeners speak the same protocol
	go func() {
		if err := h.serve(tcpListener); err != nil {
			log.Printf("serve tcp: %v", err)
		}
	}()
	go func() {
		if err := h.serve(websocketListener); err != nil {
			log.Printf("serve ws: %v", err)
		}
	}()

	log.Printf("fractal server waiting for tcp and websocket connections")
	<-ctx.Done()

	log.Printf("shutting down")
	sess.Stop()
	tcpListener.Close()
	websocketListener.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// start shows the help screen and begins the first drawing.
func start(sess *session.Session, landmark string) error {
	if landmark == "" {
		return sess.Start()
	}
	if err := sess.ShowHelp(); err != nil {
		return fmt.Errorf("help: %w", err)
	}
	if err := sess.GotoLandmark(landmark); err != nil {
		return fmt.Errorf("landmark %q: %w", landmark, err)
	}
	return sess.RequestDraw()
}
