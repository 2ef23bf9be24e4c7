package handlers

import (
	"net/http"
	"os"
	"strconv"

	"tycoon_backend/internal/logger"
	"tycoon_backend/internal/service"
	"tycoon_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades the connection and attaches the caller to their game's room.
// Auth comes from the token query parameter because browsers cannot set
// headers on websocket dials.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		userID, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		gameID, err := strconv.ParseInt(c.Query("game"), 10, 64)
		if err != nil || gameID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "game required"})
			return
		}

		player, err := h.Games.PlayerForUser(c.Request.Context(), gameID, userID)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "not seated in this game"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade", "error", err)
			return
		}

		client := ws.NewClient(userID, player.ID, gameID, conn, h.Games)
		go client.Run(hub)
	}
}
