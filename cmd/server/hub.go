package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log"
	"net"
	"strconv"
	"sync"
	"time"

	fractal "github.com/marben/fractal_explorer"
	"github.com/marben/fractal_explorer/session"
)

// maxLine bounds one command line.
const maxLine = 64 << 10

// hub connects clients to the shared session. Each client sends commands one
// JSON object per line and receives a snapshot per command, plus a snapshot
// whenever the session changes.
type hub struct {
	sess *session.Session

	m       sync.Mutex
	clients map[*client]struct{}
}

func newHub(sess *session.Session) *hub {
	return &hub{sess: sess, clients: make(map[*client]struct{})}
}

// client is one connection. Writes are serialized because the broadcaster
// and the command loop both send.
type client struct {
	conn net.Conn

	wm  sync.Mutex
	enc *json.Encoder
}

func (c *client) send(snap fractal.Snapshot) error {
	c.wm.Lock()
	defer c.wm.Unlock()
	return c.enc.Encode(snap)
}

// serve accepts connections until l is closed.
func (h *hub) serve(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go h.handle(conn)
	}
}

func (h *hub) handle(conn net.Conn) {
	log.Printf("got connection from: %s", conn.RemoteAddr())
	c := &client{conn: conn, enc: json.NewEncoder(conn)}
	h.add(c)
	defer func() {
		h.remove(c)
		conn.Close()
	}()

	if err := c.send(h.sess.Snapshot()); err != nil {
		log.Printf("err: %s: %v", conn.RemoteAddr(), err)
		return
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := c.send(h.execute(line)); err != nil {
			log.Printf("err: %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		log.Printf("err: %s: read: %v", conn.RemoteAddr(), err)
	}
}

// execute runs one command line and returns the reply.
func (h *hub) execute(line []byte) fractal.Snapshot {
	var cmd fractal.Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		snap := h.sess.Snapshot()
		snap.ID = requestID(line)
		snap.Error = "bad command: " + err.Error()
		return snap
	}

	err := h.sess.Apply(cmd)
	snap := h.sess.Snapshot()
	snap.ID = cmd.ID
	if err != nil {
		snap.Error = err.Error()
		return snap
	}
	if cmd.Op == fractal.OpImage {
		b, err := currentPNG(h.sess)
		if err != nil {
			snap.Error = err.Error()
		}
		snap.PNG = b
	}
	return snap
}

// requestID digs the id out of a command that failed to decode, so that the
// error reaches the waiting caller instead of looking like a push. Lines that
// are not JSON objects at all yield 0.
func requestID(line []byte) uint64 {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(line, &head); err == nil {
		var id uint64
		if json.Unmarshal(head.ID, &id) == nil {
			return id
		}
	}
	// cut off after the id, as in {"id":3,"op":
	i := bytes.Index(line, []byte(`"id"`))
	if i < 0 {
		return 0
	}
	rest := bytes.TrimLeft(line[i+len(`"id"`):], " \t:")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// broadcast pushes a snapshot to every client whenever the session changed
// since the previous tick.
func (h *hub) broadcast(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	var last []byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		snap := h.sess.Snapshot()
		b, err := json.Marshal(snap)
		if err != nil {
			log.Printf("err: marshal snapshot: %v", err)
			continue
		}
		if bytes.Equal(b, last) {
			continue
		}
		last = b

		for _, c := range h.snapshotClients() {
			if err := c.send(snap); err != nil {
				log.Printf("err: push to %s: %v", c.conn.RemoteAddr(), err)
				c.conn.Close()
			}
		}
	}
}

func (h *hub) snapshotClients() []*client {
	h.m.Lock()
	defer h.m.Unlock()
	cs := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		cs = append(cs, c)
	}
	return cs
}

func (h *hub) add(c *client) {
	h.m.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.m.Unlock()

	log.Printf("clients: %d", n)
}

func (h *hub) remove(c *client) {
	h.m.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.m.Unlock()

	log.Printf("clients: %d", n)
}

var errNoImage = errors.New("no drawing yet")

// currentPNG encodes the current drawing.
func currentPNG(sess *session.Session) ([]byte, error) {
	v, ok := sess.Current()
	if !ok || v.Image == nil {
		return nil, errNoImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, v.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
