package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gardenia/backend/models"
	"gardenia/backend/services"
	"gardenia/backend/utils"
)

// UserPresenceHandler serves the admin dashboard's presence reads from the
// Redis mirror.
type UserPresenceHandler struct {
	store  *services.UserStatusStore
	logger *utils.Logger
}

func NewUserPresenceHandler(store *services.UserStatusStore, logger *utils.Logger) *UserPresenceHandler {
	return &UserPresenceHandler{
		store:  store,
		logger: logger,
	}
}

// OnlineUsers handles GET /api/users/online
func (h *UserPresenceHandler) OnlineUsers(c *gin.Context) {
	users, err := h.store.OnlineUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list online users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, models.OnlineUsersResponse{
		Count: len(users),
		Users: users,
	})
}

// UserStatus handles GET /api/users/:id/status
func (h *UserPresenceHandler) UserStatus(c *gin.Context) {
	record, err := h.store.Presence(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("failed to read user presence", "user_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   record.UserID,
		"status":    record.Status,
		"last_seen": record.LastSeen,
		"is_online": record.Status == models.StatusActive,
	})
}
