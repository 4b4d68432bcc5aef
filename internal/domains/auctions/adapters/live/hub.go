package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	sendBuffer   = 256
	queueBacklog = 256
)

// Hub fans bid events out to websocket clients watching an artwork.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}

	queue chan message
	done  chan struct{}
	once  sync.Once
}

type message struct {
	artworkID string
	payload   []byte
}

type client struct {
	id        string
	artworkID string
	conn      *websocket.Conn
	send      chan []byte
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCheckOrigin restricts websocket upgrades. All origins are accepted by default.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: slog.Default(),
		rooms:  map[string]map[*client]struct{}{},
		queue:  make(chan message, queueBacklog),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Run delivers queued broadcasts until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-h.queue:
			h.deliver(m)
		}
	}
}

// Broadcast queues payload for every client watching artworkID. It never blocks; a full queue drops the message.
func (h *Hub) Broadcast(artworkID string, payload []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.queue <- message{artworkID: artworkID, payload: payload}:
		return true
	default:
		h.logger.Warn("live queue full, dropping bid event", slog.String("artwork.id", artworkID))
		return false
	}
}

// SubscriberCount reports how many clients watch artworkID.
func (h *Hub) SubscriberCount(artworkID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[artworkID])
}

// Serve upgrades the request and subscribes the connection to artworkID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, artworkID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{
		id:        uuid.New().String(),
		artworkID: artworkID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	welcome, _ := json.Marshal(map[string]string{"type": "connected", "artworkId": artworkID, "clientId": c.id})
	c.send <- welcome
	if !h.register(c) {
		close(c.send)
		_ = conn.Close()
		return nil
	}
	go h.writePump(c)
	go h.readPump(c)
	return nil
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return false
	default:
	}
	room, ok := h.rooms[c.artworkID]
	if !ok {
		room = map[*client]struct{}{}
		h.rooms[c.artworkID] = room
	}
	room[c] = struct{}{}
	h.logger.Debug("live client subscribed", slog.String("client.id", c.id), slog.String("artwork.id", c.artworkID))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	room, ok := h.rooms[c.artworkID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.artworkID)
	}
	close(c.send)
}

func (h *Hub) deliver(m message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[m.artworkID] {
		select {
		case c.send <- m.payload:
		default:
			// slow consumer
			h.removeLocked(c)
		}
	}
}

func (h *Hub) shutdown() {
	h.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		close(h.done)
		for _, room := range h.rooms {
			for c := range room {
				h.removeLocked(c)
			}
		}
	})
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client input and unregisters the client once the connection drops.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("live client closed unexpectedly", slog.String("client.id", c.id), slog.String("error", err.Error()))
			}
			return
		}
	}
}
