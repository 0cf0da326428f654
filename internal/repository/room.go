package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"social_chat/internal/domain"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	// CreateIfAbsent вставляет комнату, если ее еще нет. Повторная вставка
	// того же id не является ошибкой (ON CONFLICT DO NOTHING).
	CreateIfAbsent(ctx context.Context, room *domain.Room) error
}

type roomRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewRoomRepository(db *pgxpool.Pool, log logger.Logger) RoomRepository {
	return &roomRepository{db: db, log: log}
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, name, type, created_at
		FROM rooms
		WHERE id = $1
	`

	room := &domain.Room{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&room.ID, &room.Name, &room.Type, &room.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get room", "error", err, "room_id", id)
		return nil, err
	}

	return room, nil
}

func (r *roomRepository) CreateIfAbsent(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, name, type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(ctx, query, room.ID, room.Name, room.Type, room.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create room", "error", err, "room_id", room.ID)
		return err
	}

	return nil
}
