package hub

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingObserver struct {
	mu                      sync.Mutex
	relayed, connected, off int
}

func (o *countingObserver) MessageRelayed() {
	o.mu.Lock()
	o.relayed++
	o.mu.Unlock()
}

func (o *countingObserver) ClientConnected() {
	o.mu.Lock()
	o.connected++
	o.mu.Unlock()
}

func (o *countingObserver) ClientDisconnected() {
	o.mu.Lock()
	o.off++
	o.mu.Unlock()
}

func (o *countingObserver) counts() (relayed, connected, disconnected int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.relayed, o.connected, o.off
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return c
}

func TestHub_Broadcast(t *testing.T) {
	obs := &countingObserver{}
	h := New(zaptest.NewLogger(t), obs)
	srv := httptest.NewServer(h)
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	defer a.Close()
	defer b.Close()

	require.Eventually(t, func() bool { return h.Len() == 2 }, time.Second, 5*time.Millisecond)

	msg := []byte(`{"peaks":3,"bpm":72}`)
	assert.Equal(t, 2, h.Broadcast(msg))

	for _, c := range []*websocket.Conn{a, b} {
		_ = c.SetReadDeadline(time.Now().Add(time.Second))
		typ, got, err := c.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, typ)
		assert.Equal(t, msg, got)
	}
	relayed, connected, _ := obs.counts()
	assert.Equal(t, 1, relayed)
	assert.Equal(t, 2, connected)
}

func TestHub_ClientLeaves(t *testing.T) {
	obs := &countingObserver{}
	h := New(nil, obs)
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool {
		_, _, off := obs.counts()
		return off == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.Len())
}

func TestHub_Close(t *testing.T) {
	h := New(nil, nil)
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := dial(t, srv)
	defer c.Close()
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.Len())

	_ = c.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := c.ReadMessage()
	assert.Error(t, err)
}

func TestHub_BroadcastWithoutClientsIsNotCounted(t *testing.T) {
	obs := &countingObserver{}
	h := New(nil, obs)

	assert.Equal(t, 0, h.Broadcast([]byte(`{"peaks":0}`)))

	relayed, _, _ := obs.counts()
	assert.Equal(t, 0, relayed)
}

func TestHub_BroadcastAfterClientsLeftIsNotCounted(t *testing.T) {
	obs := &countingObserver{}
	h := New(nil, obs)
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := dial(t, srv)
	require.Eventually(t, func() bool { return h.Len() == 1 }, time.Second, 5*time.Millisecond)
	h.Close()

	assert.Equal(t, 0, h.Broadcast([]byte(`{"peaks":1}`)))
	relayed, _, _ := obs.counts()
	assert.Equal(t, 0, relayed)
	_ = c.Close()
}
