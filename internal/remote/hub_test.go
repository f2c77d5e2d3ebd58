package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bezmoradi/keycycle/internal/binding"
	"github.com/bezmoradi/keycycle/internal/hotkeys"
	"github.com/bezmoradi/keycycle/internal/mapping"
	"github.com/bezmoradi/keycycle/internal/metrics"
)

type fixture struct {
	manager *mapping.Manager
	service *hotkeys.MemoryService
	tracker *metrics.Tracker
	hub     *Hub
	addr    string
}

func newFixture(t *testing.T, opts HubOptions) *fixture {
	t.Helper()

	svc := hotkeys.NewMemoryService(false)
	m := mapping.NewManager("ctrl+m", svc, mapping.Options{})

	newHotkey := func(combo, name string) *binding.Hotkey {
		h, err := binding.New(combo, name, func(args ...any) {})
		require.NoError(t, err)
		return h
	}
	require.NoError(t, m.AddMapping("work", []mapping.Binding{
		{Label: "a", Hotkey: newHotkey("ctrl+1", "cb1")},
		{Label: "b", Hotkey: newHotkey("ctrl+2", "cb2")},
	}))
	require.NoError(t, m.AddMapping("game", []mapping.Binding{
		{Label: "jump", Hotkey: newHotkey("space", "jump")},
	}))
	require.NoError(t, m.Finalize())

	tracker := metrics.NewTracker(nil)
	opts.Manager = m
	if opts.Tracker == nil {
		opts.Tracker = tracker
	}
	hub := NewHub(opts)
	m.Subscribe(tracker.OnSwitch)
	m.Subscribe(hub.OnSwitch)

	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})

	return &fixture{
		manager: m,
		service: svc,
		tracker: tracker,
		hub:     hub,
		addr:    strings.TrimPrefix(srv.URL, "http://"),
	}
}

func (f *fixture) dial(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, f.addr)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSwitch(t *testing.T) {
	f := newFixture(t, HubOptions{})
	c := f.dial(t)

	msg, err := c.Switch("work")
	require.NoError(t, err)
	assert.Equal(t, TypeSwitched, msg.Type)
	assert.Equal(t, "work", msg.Alias)
	assert.Equal(t, "", msg.Previous)
	assert.NotEmpty(t, msg.ID)
	require.NotNil(t, msg.At)

	assert.Equal(t, "work", f.manager.CurrentAlias())
	assert.Equal(t, []string{"ctrl+1", "ctrl+2", "ctrl+m"}, f.service.Combinations())
}

func TestSwitchUnknownAliasIsStrict(t *testing.T) {
	f := newFixture(t, HubOptions{})
	c := f.dial(t)

	_, err := c.Switch("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias not found")
	assert.Equal(t, "", f.manager.CurrentAlias())
}

func TestSwitchMissingAlias(t *testing.T) {
	f := newFixture(t, HubOptions{})
	c := f.dial(t)

	_, err := c.Switch("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing alias")
}

func TestList(t *testing.T) {
	f := newFixture(t, HubOptions{})
	c := f.dial(t)

	_, err := c.Switch("game")
	require.NoError(t, err)

	msg, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, "game", msg.Current)
	assert.Equal(t, []MappingInfo{
		{Alias: "work", Hotkeys: []string{"ctrl+1 -> cb1", "ctrl+2 -> cb2"}},
		{Alias: "game", Hotkeys: []string{"space -> jump"}},
	}, msg.Mappings)
}

func TestStats(t *testing.T) {
	f := newFixture(t, HubOptions{})
	c := f.dial(t)

	_, err := c.Switch("work")
	require.NoError(t, err)
	_, err = c.Switch("game")
	require.NoError(t, err)

	msg, err := c.Stats()
	require.NoError(t, err)
	require.Len(t, msg.Stats, 2)
	assert.Equal(t, "work", msg.Stats[0].Alias)
	assert.Equal(t, 1, msg.Stats[0].Activations)
	assert.Equal(t, "game", msg.Stats[1].Alias)
}

func TestBroadcastReachesOtherClients(t *testing.T) {
	f := newFixture(t, HubOptions{})
	a := f.dial(t)
	b := f.dial(t)

	// A reply proves b is registered with the hub.
	_, err := b.List()
	require.NoError(t, err)

	_, err = a.Switch("work")
	require.NoError(t, err)

	msg, err := b.Receive()
	require.NoError(t, err)
	assert.Equal(t, TypeSwitched, msg.Type)
	assert.Equal(t, "work", msg.Alias)
}

func TestInvalidRequests(t *testing.T) {
	f := newFixture(t, HubOptions{})
	c := f.dial(t)

	require.NoError(t, c.Send(Request{Action: "dance"}))
	msg, err := c.Receive()
	require.NoError(t, err)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Message, `unknown action "dance"`)

	c.wsMutex.Lock()
	err = c.wsConn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	c.wsMutex.Unlock()
	require.NoError(t, err)

	msg, err = c.Receive()
	require.NoError(t, err)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, msg.Message, "invalid request")
}

func TestRequestsRunThroughDispatcher(t *testing.T) {
	d := hotkeys.NewDispatcher(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	f := newFixture(t, HubOptions{Post: d.Post})
	c := f.dial(t)

	_, err := c.Switch("work")
	require.NoError(t, err)

	msg, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, "work", msg.Current)
}

func TestRequestTimesOutWhenDispatcherIsStuck(t *testing.T) {
	f := newFixture(t, HubOptions{
		Post:        func(fn func()) bool { return true },
		CallTimeout: 50 * time.Millisecond,
	})
	c := f.dial(t)

	_, err := c.List()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestRequestFailsWhenQueueIsFull(t *testing.T) {
	f := newFixture(t, HubOptions{
		Post: func(fn func()) bool { return false },
	})
	c := f.dial(t)

	_, err := c.Switch("work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch queue full")
}

func TestHubURL(t *testing.T) {
	assert.Equal(t, "ws://127.0.0.1:47800/ws", hubURL("127.0.0.1:47800"))
	assert.Equal(t, "ws://host/custom", hubURL("ws://host/custom"))
}

func TestStartStop(t *testing.T) {
	hub := NewHub(HubOptions{Addr: "127.0.0.1:0"})
	require.NoError(t, hub.Start(context.Background()))
	assert.True(t, strings.HasPrefix(hub.URL(), "ws://127.0.0.1:"))
	assert.Error(t, hub.Start(context.Background()))

	require.NoError(t, hub.Stop())
	require.NoError(t, hub.Stop())
}
