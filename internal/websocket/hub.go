// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"lsa-service/internal/pkg/jwt"
	"lsa-service/internal/pkg/session"
)

// Event is one push to a connected dashboard.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(eventType string, data any) *Event {
	return &Event{Type: eventType, Data: data, Timestamp: time.Now()}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type spaMessage struct {
	spaID int64
	event *Event
}

// Hub fans payment and offboarding events out to the spas' open dashboard
// connections. A spa with no connection simply misses the push; the REST API
// remains the source of truth.
type Hub struct {
	// Registered clients by spa ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client

	broadcast chan *spaMessage

	jwtVerifier    *jwt.Verifier
	sessionManager *session.Manager
}

func NewHub(jwtVerifier *jwt.Verifier, sessionManager *session.Manager) *Hub {
	return &Hub{
		clients:        make(map[int64]map[*Client]bool),
		Register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *spaMessage, 256),
		jwtVerifier:    jwtVerifier,
		sessionManager: sessionManager,
	}
}

// AuthenticateClient validates the JWT token and builds the client identity.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.jwtVerifier.Verify(token)
	if err != nil {
		return nil, err
	}

	// Best effort; the session record is observability, not authorization.
	if err := h.sessionManager.Touch(ctx, claims.ID, claims.SpaID, "websocket"); err != nil {
		log.Printf("failed to touch session: %v", err)
	}

	return &ClientAuth{
		SpaID:     claims.SpaID,
		SessionID: claims.ID,
		Roles:     claims.Roles,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// NotifySpa pushes an event to every open connection of one spa. Safe to call
// from any goroutine; drops the event if the hub's queue is full.
func (h *Hub) NotifySpa(spaID int64, eventType string, payload any) {
	select {
	case h.broadcast <- &spaMessage{spaID: spaID, event: NewEvent(eventType, payload)}:
	default:
		log.Printf("event dropped, hub queue full: spa=%d type=%s", spaID, eventType)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.spaID] == nil {
		h.clients[client.spaID] = make(map[*Client]bool)
	}
	h.clients[client.spaID][client] = true

	log.Printf("Client connected: spa=%d, session=%s, total=%d",
		client.spaID, client.sessionID, h.totalClients())

	client.SendEvent(NewEvent("connected", map[string]any{
		"spa_id":     client.spaID,
		"session_id": client.sessionID,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.spaID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.spaID)
			}

			log.Printf("Client disconnected: spa=%d, session=%s, total=%d",
				client.spaID, client.sessionID, h.totalClients())
		}
	}
}

func (h *Hub) deliver(msg *spaMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[msg.spaID] {
		client.SendEvent(msg.event)
	}
}

// ConnectedClients reports how many connections a spa has open.
func (h *Hub) ConnectedClients(spaID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[spaID])
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
}
