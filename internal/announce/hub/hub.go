// Package hub broadcasts engine announcements to WebSocket observers.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hollowmere/warband/internal/announce"
	"github.com/hollowmere/warband/internal/economy"
)

// sendBuffer bounds the per-subscriber outbound queue. Subscribers that
// fall this far behind are dropped.
const sendBuffer = 16

// Envelope is the wire shape of one announcement.
type Envelope struct {
	Type    string          `json:"type"`
	GameID  string          `json:"gameId"`
	Message string          `json:"message,omitempty"`
	Report  *economy.Report `json:"report,omitempty"`
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub upgrades observer connections and fans announcements out to them.
type Hub struct {
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[string]*subscriber
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		upgrader:    websocket.Upgrader{},
		subscribers: make(map[string]*subscriber),
	}
}

// Handler returns the HTTP handler that upgrades observer connections.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade observer connection: %v", err)
			return
		}

		sub := &subscriber{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan []byte, sendBuffer),
		}

		h.mu.Lock()
		h.subscribers[sub.id] = sub
		h.mu.Unlock()
		log.Printf("observer connected subscriber_id=%s", sub.id)

		go h.writePump(sub)
		go h.readPump(sub)
	})
}

// SubscriberCount returns the number of connected observers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[string]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		close(sub.send)
	}
}

// AnnounceText broadcasts a plain text announcement.
func (h *Hub) AnnounceText(_ context.Context, message string, scope announce.Scope) {
	h.broadcast(Envelope{
		Type:    "text",
		GameID:  scope.GameID,
		Message: message,
	})
}

// AnnounceReport broadcasts a structured turn report.
func (h *Hub) AnnounceReport(_ context.Context, report economy.Report, scope announce.Scope) {
	h.broadcast(Envelope{
		Type:   "report",
		GameID: scope.GameID,
		Report: &report,
	})
}

func (h *Hub) broadcast(envelope Envelope) {
	data, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("marshal announcement: %v", err)
		return
	}

	h.mu.Lock()
	var stale []*subscriber
	for _, sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			// The subscriber stopped draining; drop it rather than
			// block the turn.
			stale = append(stale, sub)
			delete(h.subscribers, sub.id)
		}
	}
	h.mu.Unlock()

	for _, sub := range stale {
		close(sub.send)
		log.Printf("observer dropped subscriber_id=%s reason=backpressure", sub.id)
	}
}

func (h *Hub) writePump(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("write to observer subscriber_id=%s: %v", sub.id, err)
			h.drop(sub.id)
			return
		}
	}
}

func (h *Hub) readPump(sub *subscriber) {
	// Observers never send application messages; the read loop only
	// detects disconnects.
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub.id)
			return
		}
	}
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
	if ok {
		close(sub.send)
		log.Printf("observer disconnected subscriber_id=%s", id)
	}
}
