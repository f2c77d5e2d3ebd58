package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultClientTimeout = 5 * time.Second

// Client talks to a running hub.
type Client struct {
	wsConn  *websocket.Conn
	wsMutex sync.Mutex
	timeout time.Duration
}

// Dial connects to a hub. addr is either host:port or a full ws:// URL.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, hubURL(addr), nil)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", addr, err)
	}
	return &Client{wsConn: conn, timeout: defaultClientTimeout}, nil
}

func hubURL(addr string) string {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		return addr
	}
	return "ws://" + addr + "/ws"
}

// SetTimeout bounds how long each reply is awaited.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Send writes one request.
func (c *Client) Send(req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()
	return c.wsConn.WriteMessage(websocket.TextMessage, data)
}

// Receive reads the next message from the hub.
func (c *Client) Receive() (*Message, error) {
	c.wsConn.SetReadDeadline(time.Now().Add(c.timeout))
	_, data, err := c.wsConn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	return &msg, nil
}

// Switch asks the hub to activate alias and waits for the switch.
func (c *Client) Switch(alias string) (*Message, error) {
	if err := c.Send(Request{Action: ActionSet, Alias: alias}); err != nil {
		return nil, err
	}
	return c.await(func(m *Message) bool {
		return m.Type == TypeSwitched && m.Alias == alias
	})
}

// List returns the hub's mappings and the current alias.
func (c *Client) List() (*Message, error) {
	if err := c.Send(Request{Action: ActionList}); err != nil {
		return nil, err
	}
	return c.await(func(m *Message) bool { return m.Type == TypeMappings })
}

// Stats returns the hub's per-mapping usage.
func (c *Client) Stats() (*Message, error) {
	if err := c.Send(Request{Action: ActionStats}); err != nil {
		return nil, err
	}
	return c.await(func(m *Message) bool { return m.Type == TypeStats })
}

// await skips unrelated broadcasts until match or an error message arrives.
func (c *Client) await(match func(*Message) bool) (*Message, error) {
	for {
		msg, err := c.Receive()
		if err != nil {
			return nil, err
		}
		if msg.Type == TypeError {
			return nil, fmt.Errorf("remote: %s", msg.Message)
		}
		if match(msg) {
			return msg, nil
		}
	}
}

func (c *Client) Close() error {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	c.wsConn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.wsConn.Close()
}
