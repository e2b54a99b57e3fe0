package live

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/appstore/pkg/metrics"
	"github.com/vango-dev/appstore/pkg/view"
)

// Message types.
const (
	TypeMount   = "mount"
	TypeUpdate  = "update"
	TypeUnmount = "unmount"
)

// ErrClosed is returned by Hub methods after Close.
var ErrClosed = errors.New("live: hub closed")

// Message is the JSON envelope sent to clients.
type Message struct {
	Type  string      `json:"type"`
	Frame *view.Frame `json:"frame,omitempty"`
}

// Hub broadcasts frames to WebSocket clients. It implements view.Target.
type Hub struct {
	config   *Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *view.Frame
	closed  bool
}

var _ view.Target = (*Hub)(nil)

// NewHub creates a Hub. A nil config uses DefaultConfig.
func NewHub(config *Config) *Hub {
	config = config.withDefaults()
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		config:  config,
		logger:  logger.With("component", "live"),
		metrics: config.Metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// Mount implements view.Target.
func (h *Hub) Mount(f view.Frame) error {
	return h.publish(TypeMount, &f)
}

// Update implements view.Target.
func (h *Hub) Update(f view.Frame) error {
	return h.publish(TypeUpdate, &f)
}

// Unmount implements view.Target.
func (h *Hub) Unmount() error {
	return h.publish(TypeUnmount, nil)
}

func (h *Hub) publish(typ string, f *view.Frame) error {
	data, err := json.Marshal(Message{Type: typ, Frame: f})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	h.last = f
	for c := range h.clients {
		h.sendLocked(c, data)
	}
	return nil
}

// sendLocked queues data for c, dropping c if its buffer is full.
func (h *Hub) sendLocked(c *client, data []byte) {
	select {
	case c.send <- data:
		h.metrics.RecordFrame()
	default:
		h.logger.Warn("client too slow, dropping", "remote", c.remote)
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.ClientDisconnected()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// Last returns the most recently published frame. ok is false before the
// first mount and after an unmount.
func (h *Hub) Last() (view.Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return view.Frame{}, false
	}
	return *h.last, true
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client. Later publishes fail with ErrClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
	return nil
}

// ServeHTTP upgrades the request to a WebSocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, h.config.SendBuffer),
		remote: r.RemoteAddr,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.metrics.ClientConnected()
	if h.last != nil {
		if data, err := json.Marshal(Message{Type: TypeMount, Frame: h.last}); err == nil {
			h.sendLocked(c, data)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("client connected", "remote", c.remote)
	go h.writeLoop(c)
	h.readLoop(c)
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// readLoop discards client messages and keeps the read deadline alive
// on pongs. It returns when the connection fails.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "remote", c.remote, "error", err)
			}
			return
		}
	}
}

// writeLoop sends queued messages and heartbeats until the send channel
// is closed or a write fails.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("write error", "remote", c.remote, "error", err)
				h.remove(c)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
