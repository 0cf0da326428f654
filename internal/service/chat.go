package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"social_chat/internal/domain"
	"social_chat/internal/repository"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type ChatService interface {
	// SendMessage валидирует, прогоняет через фильтр, гарантирует комнату
	// и сохраняет сообщение. Возвращает запись с серверными id и created_at.
	SendMessage(ctx context.Context, roomID string, senderID uuid.UUID, text string, imageURL *string) (*domain.Message, error)
	GetMessages(ctx context.Context, roomID string) ([]*domain.Message, error)
	// GetConversation отдает историю 1:1 переписки двух пользователей;
	// канонический ключ комнаты выводится на сервере
	GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]*domain.Message, error)
	DeleteMessage(ctx context.Context, messageID int64, requesterID uuid.UUID) error
}

type chatService struct {
	messageRepo  repository.MessageRepository
	registry     RoomRegistry
	moderation   ModerationService
	media        MediaService
	queryTimeout time.Duration
	log          logger.Logger
}

func NewChatService(
	messageRepo repository.MessageRepository,
	registry RoomRegistry,
	moderation ModerationService,
	media MediaService,
	queryTimeout time.Duration,
	log logger.Logger,
) ChatService {
	return &chatService{
		messageRepo:  messageRepo,
		registry:     registry,
		moderation:   moderation,
		media:        media,
		queryTimeout: queryTimeout,
		log:          log,
	}
}

func (s *chatService) SendMessage(ctx context.Context, roomID string, senderID uuid.UUID, text string, imageURL *string) (*domain.Message, error) {
	message := &domain.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Text:     text,
		ImageURL: imageURL,
	}

	if !message.HasContent() {
		return nil, apperrors.ErrInvalidMessage
	}

	if err := s.moderation.Check(text); err != nil {
		return nil, err
	}

	room, err := s.registry.EnsureRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	message.RoomID = room.ID

	// Комната могла только что появиться; если вставка сообщения упадет,
	// пустая комната остается - это допустимо и не откатывается
	cctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.messageRepo.Create(cctx, message); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	return message, nil
}

func (s *chatService) GetMessages(ctx context.Context, roomID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	messages, err := s.messageRepo.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return messages, nil
}

func (s *chatService) GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]*domain.Message, error) {
	if userID == uuid.Nil || peerID == uuid.Nil {
		return nil, apperrors.ErrBadRequest
	}
	return s.GetMessages(ctx, domain.PairRoomID(userID.String(), peerID.String()))
}

// DeleteMessage - жесткое удаление, разрешено только автору.
// Прикрепленная картинка убирается из хранилища best-effort.
func (s *chatService) DeleteMessage(ctx context.Context, messageID int64, requesterID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	if message.SenderID != requesterID {
		return apperrors.ErrNotMessageOwner
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}

	if message.ImageURL != nil && *message.ImageURL != "" {
		if err := s.media.Delete(ctx, *message.ImageURL); err != nil {
			s.log.Warn("Failed to delete message image", "error", err, "message_id", messageID)
		}
	}

	return nil
}
