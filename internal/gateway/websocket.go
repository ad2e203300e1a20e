package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mossy-p/chat-gateway/internal/auth"
	"github.com/mossy-p/chat-gateway/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by middleware
		return true
	},
}

// Handler upgrades an authenticated request to a WebSocket session on the
// given namespace. Identity comes from the token the external auth service
// issued; the gateway only verifies it.
func (gw *Gateway) Handler(namespace, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.Verify(jwtSecret, c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			gw.log.Warn("upgrade failed", "error", err)
			return
		}

		gw.Attach(uuid.New().String(), identity, namespace, conn)
	}
}

// Attach registers a connection and starts its pumps. Split from Handler
// so tests can attach fake connections directly.
func (gw *Gateway) Attach(id string, identity auth.Identity, namespace string, conn Conn) *Client {
	client := newClient(id, identity, namespace, conn, gw)
	gw.hub.Register(client)
	metrics.Connects.WithLabelValues(namespace).Inc()
	gw.log.Info("connected", "conn", id, "user", identity.UserID, "namespace", namespace)

	go client.writePump()
	go client.readPump()
	return client
}
