package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"social_chat/internal/service"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type StoryHandler struct {
	storyService service.StoryService
	log          logger.Logger
}

func NewStoryHandler(storyService service.StoryService, log logger.Logger) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		log:          log,
	}
}

func (h *StoryHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file is required"})
		return
	}

	story, err := h.storyService.Create(c.Request.Context(), userID, file)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"story": story})
}

// GetMine - активные истории текущего пользователя
func (h *StoryHandler) GetMine(c *gin.Context) {
	userID := currentUserID(c)

	stories, err := h.storyService.GetMine(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

// GetAll - активные истории всех пользователей, сгруппированные по автору
func (h *StoryHandler) GetAll(c *gin.Context) {
	feed, err := h.storyService.GetFeed(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": feed})
}

func (h *StoryHandler) Delete(c *gin.Context) {
	storyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story ID"})
		return
	}

	userID := currentUserID(c)

	if err := h.storyService.Delete(c.Request.Context(), storyID, userID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Story deleted"})
}
