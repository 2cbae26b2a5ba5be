package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans out processing status to every connection of a user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *zap.Logger
}

// DocumentStatusUpdate is pushed while a document moves through generation.
type DocumentStatusUpdate struct {
	Type       string  `json:"type"`
	DocumentID string  `json:"document_id"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	Error      string  `json:"error,omitempty"`
}

type Stats struct {
	Users       int `json:"users"`
	Connections int `json:"connections"`
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     log.Named("ws"),
	}
}

// Register subscribes conn to the user's updates and starts its writer.
func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) *Client {
	client := &Client{
		userID: userID.String(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	h.mu.Unlock()

	go h.writePump(client)
	return client
}

// Unregister drops the client and stops its writer. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	close(client.send)
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

// Broadcast queues data for every connection of userID. Slow clients whose
// buffer is full miss the message.
func (h *Hub) Broadcast(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID.String()] {
		select {
		case client.send <- data:
		default:
			h.log.Warn("dropping status update for slow client", zap.String("user_id", client.userID))
		}
	}
}

// SendStatusUpdate publishes a pipeline stage of documentID to its owner.
func (h *Hub) SendStatusUpdate(userID, documentID uuid.UUID, status string, progress float64, errMsg string) {
	h.broadcastJSON(userID, DocumentStatusUpdate{
		Type:       "document_status",
		DocumentID: documentID.String(),
		Status:     status,
		Progress:   progress,
		Error:      errMsg,
	})
}

// BroadcastDocumentListChanged tells the user's open list views to refresh.
func (h *Hub) BroadcastDocumentListChanged(userID uuid.UUID) {
	h.broadcastJSON(userID, map[string]string{"type": "document_list_changed"})
}

func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := Stats{Users: len(h.clients)}
	for _, clients := range h.clients {
		stats.Connections += len(clients)
	}
	return stats
}

func (h *Hub) broadcastJSON(userID uuid.UUID, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("marshal websocket message", zap.Error(err))
		return
	}
	h.Broadcast(userID, data)
}

// writePump is the only writer on client.conn.
func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
