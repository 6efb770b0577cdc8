package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/duskwatch/werewolf/internal/middleware"
	"github.com/duskwatch/werewolf/internal/models"
	"github.com/gin-gonic/gin"
)

// GetUsers implements spec.md §6's `GET /users/` (list, auth).
func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.st.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	out := make([]models.UserDisplay, 0, len(users))
	for _, u := range users {
		out = append(out, u.Display(false))
	}
	c.JSON(http.StatusOK, out)
}

// GetUserInfo implements spec.md §6's `GET /users/info/` (self, auth).
func (h *Handler) GetUserInfo(c *gin.Context) {
	userID := c.GetInt64("user_id_int")
	u, err := h.st.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u.Display(true))
}

// HandleWebSocket upgrades the connection and hands it to the chat hub.
// Auth rides the same two carriers as the REST routes (spec.md §6): a
// Bearer header, or a "token" query param for browser websocket clients
// that can't set custom headers on the handshake.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := middleware.ValidateAccessToken(token, h.jwt.Secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("api: websocket upgrade for user %d: %v", claims.UserID, err)
		return
	}

	session := h.hub.Connect(c.Request.Context(), claims.UserID, conn)
	go session.WritePump()
	session.ReadPump()
}
