package service

import (
	"fmt"

	"social_chat/internal/config"
	"social_chat/internal/repository"
	"social_chat/pkg/logger"
)

type Services struct {
	Auth       AuthService
	User       UserService
	Registry   RoomRegistry
	Chat       ChatService
	Story      StoryService
	Media      MediaService
	Moderation ModerationService
	RateLimit  RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) (*Services, error) {
	media, err := NewMediaService(cfg.Media, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init media service: %w", err)
	}

	moderation := NewModerationService(repos.BadWord, log)
	registry := NewRoomRegistry(repos.Room, cfg.Database.QueryTimeout, log)

	return &Services{
		Auth:       NewAuthService(repos.User, cfg.JWT, log),
		User:       NewUserService(repos.User, media, log),
		Registry:   registry,
		Chat:       NewChatService(repos.Message, registry, moderation, media, cfg.Database.QueryTimeout, log),
		Story:      NewStoryService(repos.Story, media, log),
		Media:      media,
		Moderation: moderation,
		RateLimit:  NewRateLimitService(repos.RateLimit, log),
	}, nil
}
