package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/o2calc/o2calc/server/internal/api"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origins are not checked; restrict them at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Request is a client message asking for an estimate.
type Request struct {
	ID       string   `json:"id,omitempty"`
	FlowRate *float64 `json:"flow_rate"`
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string      `json:"event"`
	ID    string      `json:"id,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Hub tracks connected clients, answers their estimate requests and pushes
// the estimate history to all of them every interval.
type Hub struct {
	svc      *api.Service
	interval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// New creates a Hub backed by svc that broadcasts every interval.
func New(svc *api.Service, interval time.Duration) *Hub {
	return &Hub{
		svc:      svc,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run pushes the history every interval until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.disconnectAll()
			return
		case <-t.C:
			h.pushHistory()
		}
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		slog.Debug("ws: upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newClient(conn)
	h.add(c)
	defer h.remove(c)

	if msg, err := h.historyMessage(); err == nil {
		h.enqueue(c, msg)
	}

	go c.writeLoop()
	c.readLoop(func(raw []byte) bool {
		reply, err := json.Marshal(h.answer(raw))
		if err != nil {
			slog.Error("ws: encode reply", "err", err)
			return true
		}
		return h.enqueue(c, reply)
	})
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Debug("ws: client connected", "remote", c.remote, "clients", n)
}

// remove drops c and closes its queue. It is a no-op for a client that is
// already gone.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// enqueue hands msg to c without blocking. It returns false when c has been
// removed or its queue is full.
func (h *Hub) enqueue(c *client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) pushHistory() {
	msg, err := h.historyMessage()
	if err != nil {
		slog.Error("ws: encode history", "err", err)
		return
	}

	h.mu.RLock()
	snapshot := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	for _, c := range snapshot {
		if !h.enqueue(c, msg) {
			slog.Debug("ws: dropping slow client", "remote", c.remote)
			h.remove(c)
		}
	}
}

func (h *Hub) historyMessage() ([]byte, error) {
	return json.Marshal(Message{Event: "history", Data: h.svc.History()})
}

// answer turns one raw client frame into the reply for that client.
func (h *Hub) answer(raw []byte) Message {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Message{Event: "error", Error: "malformed request: " + err.Error()}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.FlowRate == nil {
		return Message{Event: "error", ID: req.ID, Error: "flow_rate is required"}
	}
	resp, err := h.svc.Estimate(*req.FlowRate)
	if err != nil {
		return Message{Event: "error", ID: req.ID, Error: err.Error()}
	}
	return Message{Event: "estimate", ID: req.ID, Data: resp}
}
