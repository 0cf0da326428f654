package service

import (
	"context"
	"sync/atomic"

	"social_chat/internal/moderation"
	"social_chat/internal/repository"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

// ModerationService - фильтр запрещенных слов на пути отправки.
// Применяется к обеим точкам входа: REST и веб-сокет.
type ModerationService interface {
	Check(text string) error
	Reload(ctx context.Context) error
}

type moderationService struct {
	badWordRepo repository.BadWordRepository
	matcher     atomic.Pointer[moderation.Matcher]
	log         logger.Logger
}

func NewModerationService(badWordRepo repository.BadWordRepository, log logger.Logger) ModerationService {
	s := &moderationService{
		badWordRepo: badWordRepo,
		log:         log,
	}
	// Пустой матчер до первой загрузки: сообщения не блокируются
	empty, _ := moderation.NewMatcher(nil)
	s.matcher.Store(empty)
	return s
}

func (s *moderationService) Check(text string) error {
	if text == "" {
		return nil
	}
	if s.matcher.Load().Rejects(text) {
		return apperrors.ErrContentRejected
	}
	return nil
}

// Reload перечитывает список слов из БД и атомарно подменяет матчер
func (s *moderationService) Reload(ctx context.Context) error {
	words, err := s.badWordRepo.ListWords(ctx)
	if err != nil {
		return err
	}

	matcher, err := moderation.NewMatcher(words)
	if err != nil {
		s.log.Error("Failed to build moderation matcher", "error", err)
		return err
	}

	s.matcher.Store(matcher)
	s.log.Info("Moderation word list loaded", "words", len(words))
	return nil
}
