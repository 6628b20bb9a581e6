package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitRecv(t *testing.T, ch chan []byte, what string) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
		return nil
	}
}

func TestHubBroadcastsToWatchers(t *testing.T) {
	h := NewHub()
	go h.Run()

	watcher := &Client{GameID: "g1", Send: make(chan []byte, 8)}
	other := &Client{GameID: "g2", Send: make(chan []byte, 8)}
	h.Register(watcher)
	h.Register(other)

	require.NoError(t, h.BroadcastGame("g1", map[string]string{"title": "T"}))

	data := waitRecv(t, watcher.Send, "broadcast to watcher")
	assert.Contains(t, string(data), "T")

	// The other game's client must not receive anything.
	select {
	case data := <-other.Send:
		t.Fatalf("client of another game received %q", data)
	case <-time.After(50 * time.Millisecond):
	}
}

// A client that never drains its Send channel is dropped on broadcast, and
// the hub keeps serving the remaining clients.
func TestHubDropsSlowClientWithoutStalling(t *testing.T) {
	h := NewHub()
	go h.Run()

	fast := &Client{GameID: "g1", Send: make(chan []byte, 8)}
	slow := &Client{GameID: "g1", Send: make(chan []byte)}
	h.Register(fast)
	h.Register(slow)

	require.NoError(t, h.BroadcastGame("g1", map[string]int{"round": 1}))
	waitRecv(t, fast.Send, "first broadcast to fast client")

	// The slow client's channel is closed when it gets dropped.
	select {
	case _, ok := <-slow.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("slow client was not dropped")
	}

	// The hub must still be processing broadcasts afterwards.
	require.NoError(t, h.BroadcastGame("g1", map[string]int{"round": 2}))
	waitRecv(t, fast.Send, "broadcast after dropping the slow client")
}
