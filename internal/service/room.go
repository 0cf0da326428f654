package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social_chat/internal/domain"
	"social_chat/internal/repository"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

// RoomRegistry гарантирует существование комнаты до сохранения первого
// сообщения в нее
type RoomRegistry interface {
	EnsureRoom(ctx context.Context, roomID string) (*domain.Room, error)
}

type roomRegistry struct {
	roomRepo     repository.RoomRepository
	queryTimeout time.Duration
	log          logger.Logger
}

func NewRoomRegistry(roomRepo repository.RoomRepository, queryTimeout time.Duration, log logger.Logger) RoomRegistry {
	return &roomRegistry{
		roomRepo:     roomRepo,
		queryTimeout: queryTimeout,
		log:          log,
	}
}

// EnsureRoom идемпотентна: существующая комната возвращается как есть.
// Гонка двух одновременных первых отправителей разрешается на уровне БД
// (вставка с ON CONFLICT DO NOTHING плюс повторное чтение) - второй
// вызывающий получает успех через чтение, а не ошибку дубликата.
func (s *roomRegistry) EnsureRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, apperrors.ErrBadRequest
	}

	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	room = &domain.Room{
		ID:   roomID,
		Name: domain.DefaultRoomName(roomID),
		Type: domain.RoomTypePrivate,
	}
	if err := s.roomRepo.CreateIfAbsent(ctx, room); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	// Перечитываем: при конкурентном создании вернется запись победителя
	room, err = s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	s.log.Info("Room created", "room_id", roomID)
	return room, nil
}
