// Package client talks to a fractal explorer server over its line protocol.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	fractal "github.com/marben/fractal_explorer"
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("client closed")

// Client sends commands and receives replies. Snapshots pushed by the server
// are delivered on Updates; a slow reader only misses intermediate ones.
type Client struct {
	conn   net.Conn
	nextID atomic.Uint64

	wm  sync.Mutex
	enc *json.Encoder

	m       sync.Mutex
	pending map[uint64]chan fractal.Snapshot
	err     error

	updates chan fractal.Snapshot
	done    chan struct{}
}

// Dial connects to a server at the tcp address addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn), nil
}

// New runs the protocol over an established connection.
func New(conn net.Conn) *Client {
	c := &Client{
		conn:    conn,
		enc:     json.NewEncoder(conn),
		pending: make(map[uint64]chan fractal.Snapshot),
		updates: make(chan fractal.Snapshot, 1),
		done:    make(chan struct{}),
	}
	go c.read()
	return c
}

// Updates delivers pushed snapshots. It is closed when the connection ends.
func (c *Client) Updates() <-chan fractal.Snapshot { return c.updates }

// Do sends cmd and waits for its reply. An error reported by the server is
// returned as a *ServerError together with the snapshot.
func (c *Client) Do(ctx context.Context, cmd fractal.Command) (fractal.Snapshot, error) {
	cmd.ID = c.nextID.Add(1)
	ch := make(chan fractal.Snapshot, 1)

	c.m.Lock()
	if c.err != nil {
		err := c.err
		c.m.Unlock()
		return fractal.Snapshot{}, err
	}
	c.pending[cmd.ID] = ch
	c.m.Unlock()

	defer func() {
		c.m.Lock()
		delete(c.pending, cmd.ID)
		c.m.Unlock()
	}()

	c.wm.Lock()
	err := c.enc.Encode(cmd)
	c.wm.Unlock()
	if err != nil {
		return fractal.Snapshot{}, fmt.Errorf("send %s: %w", cmd.Op, err)
	}

	select {
	case snap := <-ch:
		if snap.Error != "" {
			return snap, &ServerError{Op: cmd.Op, Msg: snap.Error}
		}
		return snap, nil
	case <-c.done:
		return fractal.Snapshot{}, c.closeErr()
	case <-ctx.Done():
		return fractal.Snapshot{}, ctx.Err()
	}
}

// Close ends the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) closeErr() error {
	c.m.Lock()
	defer c.m.Unlock()
	return c.err
}

func (c *Client) read() {
	defer close(c.updates)
	defer close(c.done)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64<<10), 64<<20)
	for scanner.Scan() {
		var snap fractal.Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			c.fail(fmt.Errorf("bad snapshot: %w", err))
			return
		}
		if snap.ID == 0 {
			c.push(snap)
			continue
		}
		c.m.Lock()
		ch, ok := c.pending[snap.ID]
		c.m.Unlock()
		if ok {
			ch <- snap
		}
	}
	err := scanner.Err()
	if err == nil {
		err = ErrClosed
	}
	c.fail(err)
}

// push replaces an unread update with snap.
func (c *Client) push(snap fractal.Snapshot) {
	select {
	case c.updates <- snap:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

func (c *Client) fail(err error) {
	c.m.Lock()
	if c.err == nil {
		c.err = err
	}
	c.m.Unlock()
	c.conn.Close()
}

// ServerError is an error reported in a reply.
type ServerError struct {
	Op  string
	Msg string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}
