package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/verdantlabs/esgboard/internal/events"
)

const wsWriteTimeout = 10 * time.Second

// Hub pushes analysis and market events to connected websocket clients.
// Delivery is best effort: a client that cannot keep up is dropped.
type Hub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
	log    zerolog.Logger
}

// NewHub creates a hub and subscribes it to the event types clients care about.
func NewHub(bus *events.Bus, log zerolog.Logger) *Hub {
	h := &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log.With().Str("component", "ws_hub").Logger(),
	}

	if bus != nil {
		for _, et := range []events.EventType{
			events.AnalysisComplete,
			events.AnalysisFailed,
			events.CompanyRefreshed,
			events.IndicesSynced,
		} {
			bus.Subscribe(et, h.broadcast)
		}
	}

	return h
}

// HandleWebSocket handles GET /ws and keeps the connection registered until
// the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.conns[conn] = struct{}{}
	count := len(h.conns)
	h.mu.Unlock()

	h.log.Info().Int("clients", count).Msg("Websocket client connected")

	// Clients only listen; the read loop exists to notice the close.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.remove(conn)
	conn.Close(websocket.StatusNormalClosure, "")
	h.log.Info().Msg("Websocket client disconnected")
}

// broadcast sends one event to every connected client.
func (h *Hub) broadcast(event *events.Event) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":      string(event.Type),
		"module":    event.Module,
		"data":      event.Data,
		"timestamp": event.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal websocket payload")
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
		err := c.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			h.log.Debug().Err(err).Msg("Dropping slow websocket client")
			h.remove(c)
			c.Close(websocket.StatusPolicyViolation, "write timeout")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects all clients and stops accepting new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}
