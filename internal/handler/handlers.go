package handler

import (
	"social_chat/internal/config"
	"social_chat/internal/relay"
	"social_chat/internal/service"
	"social_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	User      *UserHandler
	Chat      *ChatHandler
	Story     *StoryHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *relay.Hub, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(cfg),
		Auth:      NewAuthHandler(services.Auth, log),
		User:      NewUserHandler(services.User, log),
		Chat:      NewChatHandler(services.Chat, services.Media, log),
		Story:     NewStoryHandler(services.Story, log),
		WebSocket: NewWebSocketHandler(hub, services.Chat, services.Auth, log),
	}
}
