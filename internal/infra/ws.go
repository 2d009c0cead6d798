package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/bananagame/platform/internal/event"
)

// WSHub manages live connections keyed by player, used to push score
// announcements to browsers. Connections are abstracted behind channels;
// the transport upgrade is owned by the HTTP layer.
type WSHub struct {
	mu     sync.RWMutex
	conns  map[int64]map[string]*WSConn // userID -> connID -> conn
	logger *slog.Logger
}

// WSConn represents one live connection.
type WSConn struct {
	ID     string
	UserID int64
	Send   chan []byte
}

// WSMessage is the payload sent over a connection.
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NewWSHub creates a new hub.
func NewWSHub(logger *slog.Logger) *WSHub {
	return &WSHub{
		conns:  make(map[int64]map[string]*WSConn),
		logger: logger,
	}
}

// Join adds a connection for its player.
func (h *WSHub) Join(conn *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[conn.UserID] == nil {
		h.conns[conn.UserID] = make(map[string]*WSConn)
	}
	h.conns[conn.UserID][conn.ID] = conn
}

// Leave removes a connection.
func (h *WSHub) Leave(userID int64, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.conns[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// PushToUser sends a message to all of a player's connections. Slow
// consumers are skipped rather than blocking the publisher.
func (h *WSHub) PushToUser(userID int64, eventName string, data interface{}) {
	payload, err := json.Marshal(WSMessage{Event: eventName, Data: data})
	if err != nil {
		h.logger.Error("ws marshal error", "error", err, "event", eventName)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.conns[userID] {
		select {
		case conn.Send <- payload:
		default:
			h.logger.Warn("ws send buffer full", "conn_id", conn.ID, "user_id", userID)
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *WSHub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conns := range h.conns {
		count += len(conns)
	}
	return count
}

// Shutdown closes all connections.
func (h *WSHub) Shutdown(_ context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.conns {
		for _, conn := range conns {
			close(conn.Send)
		}
		delete(h.conns, userID)
	}
}

// AnnounceGameEvents subscribes the hub to the bus kinds players care about
// live: high-score advisories and saved scores. Returns an unsubscribe for
// all of them.
func (h *WSHub) AnnounceGameEvents(bus *event.Bus) func() {
	forward := func(name string) event.Handler {
		return func(ctx context.Context, p event.Payload) error {
			userID, _ := p["userId"].(int64)
			if userID == 0 {
				return nil
			}
			h.PushToUser(userID, name, p)
			return nil
		}
	}

	unsubHigh := bus.SubscribeAsync(event.HighScoreAchieved, forward("high_score_achieved"))
	unsubSaved := bus.SubscribeAsync(event.ScoreSaved, forward("score_saved"))
	return func() {
		unsubHigh()
		unsubSaved()
	}
}
