package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tphakala/go-nyquist"
)

// Control is a configuration change sent by a viewer as a JSON text message.
// Absent fields are left unchanged.
type Control struct {
	PointsPerOctave    *uint    `json:"pointsPerOctave,omitempty"`
	Coherence          *bool    `json:"coherence,omitempty"`
	CoherenceThreshold *float32 `json:"coherenceThreshold,omitempty"`
}

// ApplyTo writes the present fields to p. It stops at the first invalid
// value.
func (c Control) ApplyTo(p *nyquist.Plot) error {
	if c.PointsPerOctave != nil {
		if err := p.SetPointsPerOctave(*c.PointsPerOctave); err != nil {
			return err
		}
	}
	if c.Coherence != nil {
		p.SetCoherence(*c.Coherence)
	}
	if c.CoherenceThreshold != nil {
		if err := p.SetCoherenceThreshold(*c.CoherenceThreshold); err != nil {
			return err
		}
	}
	return nil
}

// Hub fans frames out to every connected viewer. The latest frame is sent to
// viewers as they connect.
type Hub struct {
	upgrader websocket.Upgrader
	plot     *nyquist.Plot

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    []byte
}

// NewHub creates a hub. Control messages from viewers are applied to plot;
// pass nil to ignore them.
func NewHub(plot *nyquist.Plot) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		plot:    plot,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves one viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		nyquist.Logger().Warn("stream: websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer func() { _ = conn.Close() }()

	connMutex := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMutex
	last := h.last
	h.mu.Unlock()
	defer h.remove(conn)

	if last != nil {
		connMutex.Lock()
		err := conn.WriteMessage(websocket.BinaryMessage, last)
		connMutex.Unlock()
		if err != nil {
			return
		}
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			nyquist.Logger().Debug("stream: viewer disconnected", slog.Any("error", err))
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if err := h.control(data); err != nil {
			nyquist.Logger().Warn("stream: control message rejected", slog.Any("error", err))
		}
	}
}

func (h *Hub) control(data []byte) error {
	if h.plot == nil {
		return nil
	}
	var c Control
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decode control: %w", err)
	}
	return c.ApplyTo(h.plot)
}

// Broadcast encodes records once and sends them to every viewer. Viewers
// that fail to receive are disconnected.
func (h *Hub) Broadcast(records []float32) error {
	frame, err := AppendFrame(nil, records)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.last = frame
	h.mu.Unlock()

	h.mu.RLock()
	var failed []*websocket.Conn
	for conn, connMutex := range h.clients {
		connMutex.Lock()
		err := conn.WriteMessage(websocket.BinaryMessage, frame)
		connMutex.Unlock()
		if err != nil {
			nyquist.Logger().Debug("stream: write failed", slog.Any("error", err))
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		_ = conn.Close()
		h.remove(conn)
	}
	return nil
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
