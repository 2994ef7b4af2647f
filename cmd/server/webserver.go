package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/marben/fractal_explorer/session"
)

//go:embed static
var static embed.FS

// webServer creates a server for the browser page and the current image.
// It initializes the websocket endpoint and returns a net.Listener accepting
// websocket connections.
func webServer(ctx context.Context, addr string, sess *session.Session) (*WebsocketListener, *http.Server) {
	l := NewWSListener(ctx, addr+"/ws")
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(l))
	mux.HandleFunc("/image.png", imageHandler(sess))

	root, err := fs.Sub(static, "static")
	if err != nil {
		log.Fatalf("static: %v", err)
	}
	mux.Handle("/", http.FileServer(http.FS(root)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://localhost%s", addr)
	return l, srv
}

// imageHandler serves the current drawing as PNG.
func imageHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := currentPNG(sess)
		if errors.Is(err, errNoImage) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(b); err != nil {
			log.Printf("image.png: %v", err)
		}
	}
}

// websocketHandler handles the http ws endpoint
// if websocket is succesfully initialized it is passed to WebsocketListener so it can be accepted
func websocketHandler(l *WebsocketListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.done:
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

// WebsocketListener implements net.Listener on top of accepted websockets.
type WebsocketListener struct {
	ch        chan *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	addr      wsAddr
}

func NewWSListener(ctx context.Context, addr string) *WebsocketListener {
	ctx, cancel := context.WithCancel(ctx)
	return &WebsocketListener{
		ch:     make(chan *websocket.Conn),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

// Accept returns the next websocket as a net.Conn carrying binary messages.
func (l *WebsocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.addr
}

func (l *WebsocketListener) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.cancel()
	})
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}
