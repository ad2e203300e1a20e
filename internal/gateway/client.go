package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mossy-p/chat-gateway/internal/auth"
)

// Namespaces multiplexed over the gateway's WebSocket endpoints.
const (
	NamespaceChat   = "chat"
	NamespaceWebRTC = "webrtc"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// Conn is the subset of the websocket connection the client uses; tests
// substitute in-memory fakes.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Client is one connected session. It is owned exclusively by this
// instance and destroyed on disconnect.
type Client struct {
	ID        string
	Identity  auth.Identity
	Namespace string

	conn    Conn
	send    chan []byte
	gateway *Gateway
	log     *slog.Logger

	// closeOnce guarantees disconnect cleanup runs exactly once no matter
	// which pump exits first.
	closeOnce sync.Once
}

func newClient(id string, identity auth.Identity, namespace string, conn Conn, gw *Gateway) *Client {
	return &Client{
		ID:        id,
		Identity:  identity,
		Namespace: namespace,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		gateway:   gw,
		log:       gw.log.With("conn", id, "user", identity.UserID),
	}
}

// enqueue hands an outbound frame to the write pump without blocking. A
// slow consumer sheds frames rather than stalling the sender.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping frame")
	}
}

// readPump runs the connection's receive loop: decode, dispatch, repeat.
// Exit triggers disconnect cleanup.
func (c *Client) readPump() {
	defer c.shutdown()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("read failed", "error", err)
			}
			return
		}
		c.gateway.Dispatch(c, message)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.gateway.disconnect(c)
		c.conn.Close()
	})
}
