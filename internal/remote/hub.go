// Package remote lets other processes switch mappings and follow switches
// over a local websocket.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bezmoradi/keycycle/internal/mapping"
	"github.com/bezmoradi/keycycle/internal/metrics"
)

const (
	writeDeadline      = 5 * time.Second
	readDeadline       = 90 * time.Second
	pingInterval       = 30 * time.Second
	maxReadMessageSize = 4 * 1024
	sendBufferSize     = 16
	defaultCallTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	// The hub listens on loopback only.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

var errBusy = errors.New("dispatch queue full")

// HubOptions configures the websocket server.
type HubOptions struct {
	// Addr is the listen address, "127.0.0.1:0" for an OS-assigned port.
	Addr string

	Manager *mapping.Manager
	Tracker *metrics.Tracker

	// Post runs fn on the goroutine that owns Manager. Nil runs it inline.
	Post func(fn func()) bool

	// CallTimeout bounds how long a request waits for Post'ed work.
	CallTimeout time.Duration
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub serves remote clients. Every client receives every switch event.
type Hub struct {
	opts HubOptions

	mu      sync.Mutex
	clients map[*client]struct{}

	listener  net.Listener
	server    *http.Server
	url       string
	closeOnce sync.Once
}

func NewHub(opts HubOptions) *Hub {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &Hub{
		opts:    opts,
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

// Start listens on the configured address and serves in the background.
func (h *Hub) Start(ctx context.Context) error {
	if h.server != nil {
		return fmt.Errorf("remote: already started")
	}

	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("remote: listen: %w", err)
	}
	h.listener = ln

	h.mu.Lock()
	h.url = fmt.Sprintf("ws://%s/ws", ln.Addr().String())
	h.mu.Unlock()

	h.server = &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[REMOTE] server error: %v", err)
		}
	}()

	log.Printf("[REMOTE] listening on %s", h.URL())
	return nil
}

// URL returns the websocket URL, empty before Start.
func (h *Hub) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.url
}

// Stop closes every client and shuts the server down. It is idempotent.
func (h *Hub) Stop() error {
	var stopErr error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		for c := range h.clients {
			h.dropLocked(c)
		}
		h.mu.Unlock()

		if h.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("remote: shutdown: %w", err)
			}
		}
		log.Printf("[REMOTE] stopped")
	})
	return stopErr
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OnSwitch is a mapping.Manager subscriber that broadcasts the event.
func (h *Hub) OnSwitch(e mapping.SwitchEvent) {
	at := e.At
	h.broadcast(Message{
		Type:     TypeSwitched,
		ID:       e.ID,
		Alias:    e.Alias,
		Previous: e.Previous,
		At:       &at,
	})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[REMOTE] marshal %s: %v", msg.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueueLocked(c, data)
	}
}

func (h *Hub) reply(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[REMOTE] marshal %s: %v", msg.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, data)
	}
}

// enqueueLocked never blocks; a client that cannot keep up is dropped.
func (h *Hub) enqueueLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("[REMOTE] client %s too slow, disconnecting", c.conn.RemoteAddr())
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[REMOTE] upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Printf("[REMOTE] client connected: %s", conn.RemoteAddr())

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
		log.Printf("[REMOTE] client disconnected: %s", c.conn.RemoteAddr())
	}()

	c.conn.SetReadLimit(maxReadMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[REMOTE] read error: %v", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			h.reply(c, errorMessage("invalid request: "+err.Error()))
			continue
		}
		if msg, ok := h.handle(req); ok {
			h.reply(c, msg)
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[REMOTE] write error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle answers one request. A successful set has no direct reply; the
// switched broadcast acknowledges it.
func (h *Hub) handle(req Request) (Message, bool) {
	switch req.Action {
	case ActionSet:
		if req.Alias == "" {
			return errorMessage("set: missing alias"), true
		}
		var setErr error
		if err := h.call(func() { setErr = h.opts.Manager.SetMapping(req.Alias, true) }); err != nil {
			return errorMessage("set: " + err.Error()), true
		}
		if setErr != nil {
			return errorMessage(setErr.Error()), true
		}
		return Message{}, false

	case ActionList:
		var msg Message
		if err := h.call(func() { msg = h.mappings() }); err != nil {
			return errorMessage("list: " + err.Error()), true
		}
		return msg, true

	case ActionStats:
		if h.opts.Tracker == nil {
			return errorMessage("stats: tracking disabled"), true
		}
		return Message{Type: TypeStats, Stats: h.opts.Tracker.Snapshot()}, true
	}
	return errorMessage(fmt.Sprintf("unknown action %q", req.Action)), true
}

func (h *Hub) mappings() Message {
	listings := h.opts.Manager.ListMappings()
	out := Message{
		Type:     TypeMappings,
		Current:  h.opts.Manager.CurrentAlias(),
		Mappings: make([]MappingInfo, 0, len(listings)),
	}
	for _, l := range listings {
		out.Mappings = append(out.Mappings, MappingInfo{Alias: l.Alias, Hotkeys: l.Descriptions})
	}
	return out
}

// call runs fn where the Manager lives and waits for it to finish.
func (h *Hub) call(fn func()) error {
	if h.opts.Post == nil {
		fn()
		return nil
	}

	done := make(chan struct{})
	if !h.opts.Post(func() {
		defer close(done)
		fn()
	}) {
		return errBusy
	}

	select {
	case <-done:
		return nil
	case <-time.After(h.opts.CallTimeout):
		return fmt.Errorf("timed out after %s", h.opts.CallTimeout)
	}
}
