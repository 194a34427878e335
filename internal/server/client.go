package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/bending/internal/core/ability"
)

const (
	writeWait    = 5 * time.Second
	defaultQueue = 64
)

// client is one viewer connection. The queue keeps the newest hints: when
// it is full the oldest queued hint is dropped.
type client struct {
	id      string
	world   string
	conn    *websocket.Conn
	queue   chan ability.Hint
	dropped uint64 // atomic

	done chan struct{}
	once sync.Once
}

func newClient(id, world string, conn *websocket.Conn, size int) *client {
	if size <= 0 {
		size = defaultQueue
	}
	return &client{
		id:    id,
		world: world,
		conn:  conn,
		queue: make(chan ability.Hint, size),
		done:  make(chan struct{}),
	}
}

func (c *client) wants(h ability.Hint) bool {
	return c.world == "" || c.world == h.World
}

// offer never blocks.
func (c *client) offer(h ability.Hint) {
	for {
		select {
		case c.queue <- h:
			return
		default:
		}
		select {
		case <-c.queue:
			atomic.AddUint64(&c.dropped, 1)
		default:
		}
	}
}

func (c *client) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

func (c *client) writeLoop() error {
	for {
		select {
		case <-c.done:
			return nil
		case h := <-c.queue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(h); err != nil {
				return err
			}
		}
	}
}

// readLoop discards inbound frames so control messages are processed and a
// closed peer is noticed.
func (c *client) readLoop() error {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return err
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
