package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/bending/internal/core/ability"
	"github.com/zeusync/bending/internal/core/events/bus"
	"github.com/zeusync/bending/internal/core/observability/log"
)

func newFeed(t *testing.T, opts ...FeedOption) (*Feed, bus.HintBus, string) {
	t.Helper()
	hints := bus.New(log.Nop())
	feed, err := NewFeed(hints, log.Nop(), opts...)
	require.NoError(t, err)

	s := httptest.NewServer(feed.Handler())
	t.Cleanup(func() {
		feed.Close()
		s.Close()
	})
	return feed, hints, "ws" + strings.TrimPrefix(s.URL, "http") + HintsPath
}

func dial(t *testing.T, feed *Feed, u string, want int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return feed.Clients() == want }, time.Second, 5*time.Millisecond)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) ability.Hint {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var h ability.Hint
	require.NoError(t, conn.ReadJSON(&h))
	return h
}

func TestFeedToken(t *testing.T) {
	_, _, u := newFeed(t, WithToken("supersecrettoken"))

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, _, err = websocket.DefaultDialer.Dial(u+"?token=invalid", nil)
	require.Error(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(u+"?token=supersecrettoken", nil)
	require.NoError(t, err)
	_ = conn.Close()
}

func TestFeedForwardsHints(t *testing.T) {
	feed, hints, u := newFeed(t)
	conn := dial(t, feed, u, 1)

	require.NoError(t, hints.Publish("earth", ability.Hint{
		Kind:  ability.HintSound,
		Name:  "shard.launch",
		World: "earth",
		Data:  map[string]any{"volume": 1.0},
	}))

	h := read(t, conn)
	assert.Equal(t, ability.HintSound, h.Kind)
	assert.Equal(t, "shard.launch", h.Name)
	assert.Equal(t, "earth", h.World)
	assert.Equal(t, 1.0, h.Data["volume"])
}

func TestFeedWorldFilter(t *testing.T) {
	feed, hints, u := newFeed(t)
	conn := dial(t, feed, u+"?world=earth", 1)

	require.NoError(t, hints.Publish("nether", ability.Hint{Name: "ignored", World: "nether"}))
	require.NoError(t, hints.Publish("earth", ability.Hint{Name: "wall.raise", World: "earth"}))

	assert.Equal(t, "wall.raise", read(t, conn).Name)
}

func TestFeedDropsOldestForSlowViewer(t *testing.T) {
	c := newClient("slow", "", nil, 2)
	for _, name := range []string{"a", "b", "c", "d"} {
		c.offer(ability.Hint{Name: name})
	}

	assert.Equal(t, uint64(2), c.Dropped())
	assert.Equal(t, "c", (<-c.queue).Name)
	assert.Equal(t, "d", (<-c.queue).Name)
}

func TestFeedViewerDisconnect(t *testing.T) {
	feed, hints, u := newFeed(t)
	conn := dial(t, feed, u, 1)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return feed.Clients() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, hints.Publish("earth", ability.Hint{Name: "after"}))
}

func TestFeedClose(t *testing.T) {
	feed, hints, u := newFeed(t)
	conn := dial(t, feed, u, 1)

	feed.Close()
	assert.Equal(t, 0, feed.Clients())
	assert.Empty(t, hints.Topics())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFeedServe(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	hints := bus.New(log.Nop())
	feed, err := NewFeed(hints, log.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Serve(ctx, addr) }()

	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = websocket.DefaultDialer.Dial("ws://"+addr+HintsPath, nil)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	defer conn.Close()

	require.ErrorIs(t, feed.Serve(ctx, addr), ErrFeedAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
	require.ErrorIs(t, feed.Serve(context.Background(), addr), ErrFeedClosed)
}
