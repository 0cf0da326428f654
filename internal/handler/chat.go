package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"social_chat/internal/service"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	media       service.MediaService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, media service.MediaService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		media:       media,
		log:         log,
	}
}

// GetMessages отдает историю комнаты по возрастанию времени создания
func (h *ChatHandler) GetMessages(c *gin.Context) {
	roomID := c.Param("roomId")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	messages, err := h.chatService.GetMessages(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetConversation отдает историю 1:1 переписки с указанным пользователем.
// Ключ комнаты выводится из пары идентификаторов на сервере, порядок не важен.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	peerID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	messages, err := h.chatService.GetConversation(c.Request.Context(), currentUserID(c), peerID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage принимает multipart-форму с текстом и необязательной картинкой
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := currentUserID(c)

	roomID := c.PostForm("room_id")
	text := c.PostForm("message")

	var imageURL *string
	if file, err := c.FormFile("image"); err == nil && file != nil {
		url, err := h.media.Save(c.Request.Context(), file, false)
		if err != nil {
			c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
			return
		}
		imageURL = &url
	}

	message, err := h.chatService.SendMessage(c.Request.Context(), roomID, userID, text, imageURL)
	if err != nil {
		// Картинка уже лежит в хранилище, но сообщение не сохранилось
		if imageURL != nil {
			if derr := h.media.Delete(c.Request.Context(), *imageURL); derr != nil {
				h.log.Warn("Failed to clean up image after failed send", "error", derr)
			}
		}
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message ID"})
		return
	}

	userID := currentUserID(c)

	if err := h.chatService.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
