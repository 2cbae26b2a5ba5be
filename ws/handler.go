package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vnkhanh/study-notes-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the token check below is the access control; browsers connect cross-origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleStatus subscribes the caller to status updates of their documents.
// Browsers cannot set headers on a websocket handshake, so the access token
// comes in the token query parameter.
func (h *Hub) HandleStatus(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		claims, err := utils.VerifyToken(secret, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		userID := claims.UserID
		client := h.Register(userID, conn)
		defer h.Unregister(client)
		h.log.Info("status websocket connected", zap.String("user_id", userID.String()))

		hello, _ := json.Marshal(gin.H{"type": "connected", "message": "Connected to status updates"})
		client.send <- hello

		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		h.log.Info("status websocket disconnected", zap.String("user_id", userID.String()))
	}
}
