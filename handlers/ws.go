package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gardenia/backend/middleware"
	"gardenia/backend/services"
	"gardenia/backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler admits websocket connections into the presence service.
type WSHandler struct {
	presence  *services.PresenceService
	jwtSecret string
	logger    *utils.Logger
}

func NewWSHandler(presence *services.PresenceService, jwtSecret string, logger *utils.Logger) *WSHandler {
	return &WSHandler{
		presence:  presence,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Serve upgrades the connection, verifies the bearer token carried in the
// query string, and registers the connection. A bad token closes the socket
// with a policy-violation code before any registry state exists.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}

	claims, err := middleware.VerifyToken(c.Query("token"), h.jwtSecret)
	if err != nil {
		h.logger.Warn("websocket rejected", "remote", c.ClientIP())
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthorized"),
			time.Now().Add(5*time.Second))
		conn.Close()
		return
	}

	client := services.NewClient(claims.UserID, claims.IsAdmin, conn)
	h.presence.Admit(client)

	go client.WritePump()
	go client.ReadPump(h.presence)
}
