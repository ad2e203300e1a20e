package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mossy-p/chat-gateway/internal/presence"
)

// RoomUsers returns the presence store's view of a room's members. Rooms
// are implicit here: an unknown room is simply empty, not a 404.
func RoomUsers(store presence.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
			return
		}

		users, err := store.Members(c.Request.Context(), roomID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "presence unavailable"})
			return
		}
		if users == nil {
			users = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"roomId": roomID, "users": users})
	}
}
