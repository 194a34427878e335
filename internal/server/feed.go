// Package server streams presentation hints to websocket viewers.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/events/bus"
	"github.com/zeusync/bending/internal/core/observability/log"
)

const (
	HintsPath       = "/hints"
	shutdownTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type FeedOption func(*Feed)

// WithToken requires viewers to pass ?token=<token>.
func WithToken(token string) FeedOption {
	return func(f *Feed) { f.token = token }
}

// WithQueueSize sets the per-viewer hint buffer.
func WithQueueSize(n int) FeedOption {
	return func(f *Feed) { f.queueSize = n }
}

// Feed forwards every hint published on the bus to connected viewers as
// JSON. Publishing never waits on a viewer.
type Feed struct {
	bus bus.HintBus
	sub bus.Subscription
	log log.Log

	token     string
	queueSize int

	mu      sync.RWMutex
	clients map[string]*client

	running int32 // atomic bool
	closed  int32 // atomic bool
	workers sync.WaitGroup
}

func NewFeed(hints bus.HintBus, logger log.Log, opts ...FeedOption) (*Feed, error) {
	f := &Feed{
		bus:       hints,
		log:       logger.With(log.String("component", "feed")),
		queueSize: defaultQueue,
		clients:   make(map[string]*client),
	}
	for _, opt := range opts {
		opt(f)
	}

	sub, err := hints.Subscribe(bus.AllTopics, "", f.broadcast)
	if err != nil {
		return nil, fmt.Errorf("subscribe feed: %w", err)
	}
	f.sub = sub
	return f, nil
}

// Handler serves the websocket endpoint at HintsPath.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(HintsPath, f.handleHints)
	return mux
}

// Serve listens on addr until ctx is cancelled, then closes every viewer.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	if atomic.LoadInt32(&f.closed) == 1 {
		return ErrFeedClosed
	}
	if !atomic.CompareAndSwapInt32(&f.running, 0, 1) {
		return ErrFeedAlreadyRunning
	}
	defer atomic.StoreInt32(&f.running, 0)

	srv := &http.Server{
		Addr:              addr,
		Handler:           f.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	f.log.Info("hint feed listening", log.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve feed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	f.Close()
	return err
}

// Close unsubscribes from the bus and disconnects every viewer.
func (f *Feed) Close() {
	if !atomic.CompareAndSwapInt32(&f.closed, 0, 1) {
		return
	}
	if err := f.bus.Unsubscribe(f.sub); err != nil {
		f.log.Warn("feed unsubscribe failed", log.Error(err))
	}

	f.mu.Lock()
	for id, c := range f.clients {
		c.close()
		delete(f.clients, id)
	}
	f.mu.Unlock()

	f.workers.Wait()
	f.log.Info("hint feed closed")
}

// Clients returns the number of connected viewers.
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *Feed) broadcast(h ability.Hint) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.clients {
		if c.wants(h) {
			c.offer(h)
		}
	}
	return nil
}

func (f *Feed) authorize(r *http.Request) error {
	if f.token == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(f.token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func (f *Feed) handleHints(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&f.closed) == 1 {
		http.Error(w, ErrFeedClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	if err := f.authorize(r); err != nil {
		f.log.Debug("viewer rejected", log.String("remote", r.RemoteAddr), log.Error(err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Debug("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	c := newClient(uuid.NewString(), r.URL.Query().Get("world"), conn, f.queueSize)
	f.mu.Lock()
	if atomic.LoadInt32(&f.closed) == 1 {
		f.mu.Unlock()
		c.close()
		return
	}
	f.clients[c.id] = c
	f.workers.Add(2)
	f.mu.Unlock()

	f.log.Debug("viewer connected",
		log.String("client", c.id),
		log.String("world", c.world),
		log.String("remote", r.RemoteAddr))

	go func() {
		defer f.workers.Done()
		if err := c.writeLoop(); err != nil {
			f.log.Debug("viewer write failed", log.String("client", c.id), log.Error(err))
		}
		f.remove(c)
	}()
	go func() {
		defer f.workers.Done()
		_ = c.readLoop()
		f.remove(c)
	}()
}

func (f *Feed) remove(c *client) {
	c.close()
	f.mu.Lock()
	_, ok := f.clients[c.id]
	delete(f.clients, c.id)
	f.mu.Unlock()
	if ok {
		f.log.Debug("viewer disconnected",
			log.String("client", c.id),
			log.Uint64("dropped", c.Dropped()))
	}
}
