package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"social_chat/internal/domain"
	"social_chat/internal/repository"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type StoryService interface {
	Create(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*domain.Story, error)
	GetMine(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error)
	GetFeed(ctx context.Context) ([]*domain.StoryFeedEntry, error)
	Delete(ctx context.Context, storyID, requesterID uuid.UUID) error
	// SweepExpired удаляет истекшие истории и их медиа. Вызывается периодически.
	SweepExpired(ctx context.Context) (int, error)
}

type storyService struct {
	storyRepo repository.StoryRepository
	media     MediaService
	log       logger.Logger
}

func NewStoryService(storyRepo repository.StoryRepository, media MediaService, log logger.Logger) StoryService {
	return &storyService{
		storyRepo: storyRepo,
		media:     media,
		log:       log,
	}
}

func (s *storyService) Create(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (*domain.Story, error) {
	mediaURL, err := s.media.Save(ctx, file, true)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	story := &domain.Story{
		ID:        uuid.New(),
		UserID:    userID,
		MediaURL:  mediaURL,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.StoryTTL),
	}

	if err := s.storyRepo.Create(ctx, story); err != nil {
		if derr := s.media.Delete(ctx, mediaURL); derr != nil {
			s.log.Warn("Failed to clean up story media after failed insert", "error", derr)
		}
		return nil, err
	}

	s.log.Info("Story created", "story_id", story.ID, "user_id", userID)
	return story, nil
}

func (s *storyService) GetMine(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error) {
	return s.storyRepo.GetActiveByUser(ctx, userID, time.Now())
}

func (s *storyService) GetFeed(ctx context.Context) ([]*domain.StoryFeedEntry, error) {
	return s.storyRepo.GetAllActive(ctx, time.Now())
}

func (s *storyService) Delete(ctx context.Context, storyID, requesterID uuid.UUID) error {
	story, err := s.storyRepo.GetByID(ctx, storyID)
	if err != nil {
		return err
	}

	if story.UserID != requesterID {
		return apperrors.ErrForbidden
	}

	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return err
	}

	// Медиа убираем best-effort: история уже удалена
	if err := s.media.Delete(ctx, story.MediaURL); err != nil {
		s.log.Warn("Failed to delete story media", "error", err, "story_id", storyID)
	}

	return nil
}

func (s *storyService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.storyRepo.GetExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, story := range expired {
		if err := s.storyRepo.Delete(ctx, story.ID); err != nil {
			s.log.Warn("Failed to delete expired story", "error", err, "story_id", story.ID)
			continue
		}
		if err := s.media.Delete(ctx, story.MediaURL); err != nil {
			s.log.Warn("Failed to delete expired story media", "error", err, "story_id", story.ID)
		}
		removed++
	}

	if removed > 0 {
		s.log.Info("Expired stories removed", "count", removed)
	}
	return removed, nil
}
