package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wsniff/internal/core/ports"
)

const (
	writeWait        = 5 * time.Second
	subscriberBuffer = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header and those whose
// Origin host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && u.Host == r.Host {
		return true
	}
	log.Printf("WebSocket: Rejected origin: %s", origin)
	return false
}

// WSMessage is the envelope written to clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager relays engine events to connected WebSocket clients.
type WSManager struct {
	Service ports.SnifferService
	Clients map[*websocket.Conn]struct{}
	mu      sync.Mutex
}

// NewWSManager creates a manager for service.
func NewWSManager(service ports.SnifferService) *WSManager {
	return &WSManager{
		Service: service,
		Clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start subscribes to the engine and broadcasts until ctx is done.
func (m *WSManager) Start(ctx context.Context) {
	events, unsubscribe := m.Service.Subscribe(subscriberBuffer)
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				m.broadcastMessage(WSMessage{Type: string(ev.Type), Payload: ev})
			}
		}
	}()
}

// HandleWebSocket upgrades the request and sends the current status as the
// first message.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = struct{}{}
	hello, _ := json.Marshal(WSMessage{Type: "status", Payload: m.Service.Status()})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.TextMessage, hello)
	m.mu.Unlock()

	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// Clean up on disconnect
	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.Clients, conn)
			m.mu.Unlock()
			conn.Close()
			log.Printf("WebSocket disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clients)
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(m.Clients, conn)
	}
}
