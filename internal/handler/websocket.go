package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"social_chat/internal/relay"
	"social_chat/internal/service"
	"social_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	hub         *relay.Hub
	chatService service.ChatService
	authService service.AuthService
	log         logger.Logger
}

func NewWebSocketHandler(hub *relay.Hub, chatService service.ChatService, authService service.AuthService, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		chatService: chatService,
		authService: authService,
		log:         log,
	}
}

// HandleChat апгрейдит соединение и передает его хабу. Идентичность
// берется из bearer-токена рукопожатия (заголовок или query-параметр),
// а не из полей событий.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication token required"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := relay.NewClient(h.hub, conn, user.ID, h.chatService, h.log)
	client.Serve()
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	// Браузерный WebSocket API не умеет ставить заголовки
	return c.Query("token")
}
