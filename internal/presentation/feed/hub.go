// Package feed streams selection and command events to browser viewers
// over websocket.
package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/rtscore/internal/core/events"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/observability/log"
)

const (
	DefaultBuffer = 64
	writeTimeout  = 5 * time.Second
)

type Option func(*Hub)

// WithBuffer sets the per-viewer queue length. Messages for a viewer whose
// queue is full are dropped.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// Hub fans bus events out to connected viewers. Publishing never blocks on
// a slow viewer.
type Hub struct {
	bus      *bus.Bus
	logger   log.Log
	buffer   int
	now      func() time.Time
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	subs        []*bus.Subscription
	activated   bool
	deactivated bool

	closed  atomic.Bool
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewHub(b *bus.Bus, opts ...Option) *Hub {
	h := &Hub{
		bus:     b,
		logger:  log.NewNop(),
		buffer:  DefaultBuffer,
		now:     time.Now,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("feed")
	return h
}

// Activate subscribes to the presentation events. Only the first call has
// an effect.
func (h *Hub) Activate() {
	if h.activated {
		return
	}
	h.activated = true
	h.subs = []*bus.Subscription{
		bus.Subscribe(h.bus, func(e events.UnitSpawned) error { return h.broadcast(spawnedMessage(e, h.now())) }),
		bus.Subscribe(h.bus, func(e events.UnitDespawned) error { return h.broadcast(despawnedMessage(e, h.now())) }),
		bus.Subscribe(h.bus, func(e events.UnitSelected) error { return h.broadcast(selectedMessage(e, h.now())) }),
		bus.Subscribe(h.bus, func(e events.UnitDeselected) error { return h.broadcast(deselectedMessage(e, h.now())) }),
		bus.Subscribe(h.bus, func(e events.MoveOrdered) error { return h.broadcast(moveMessage(e, h.now())) }),
		bus.Subscribe(h.bus, func(e events.DragRegionChanged) error { return h.broadcast(dragChangedMessage(e, h.now())) }),
		bus.Subscribe(h.bus, func(e events.DragRegionCleared) error { return h.broadcast(dragClearedMessage(e, h.now())) }),
	}
}

// Deactivate unsubscribes and disconnects every viewer. It runs once.
func (h *Hub) Deactivate() {
	if !h.activated || h.deactivated {
		return
	}
	h.deactivated = true
	h.closed.Store(true)
	for _, s := range h.subs {
		s.Cancel()
	}
	h.subs = nil
	h.closeAll()
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Sent() uint64    { return h.sent.Load() }
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// ServeHTTP upgrades the request and streams messages until the viewer
// disconnects. A deactivated hub answers 503.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "feed is closed", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	c := newClient(conn, h.buffer)
	h.mu.Lock()
	if h.closed.Load() {
		// deactivated while upgrading
		h.mu.Unlock()
		c.close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("viewer connected", log.String("remote", conn.RemoteAddr().String()))

	go c.writeLoop(h.logger)
	c.readLoop()

	h.remove(c)
	h.logger.Info("viewer disconnected", log.String("remote", conn.RemoteAddr().String()))
}

func (h *Hub) broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type, err)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.enqueue(data) {
			h.sent.Add(1)
		} else {
			h.dropped.Add(1)
		}
	}
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn, buffer int) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) writeLoop(logger log.Log) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("viewer write failed", log.Error(err))
				c.close()
				return
			}
		}
	}
}

// readLoop drains control frames until the connection fails or closes.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
