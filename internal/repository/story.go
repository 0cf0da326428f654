package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"social_chat/internal/domain"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type StoryRepository interface {
	Create(ctx context.Context, story *domain.Story) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Story, error)
	GetAllActive(ctx context.Context, now time.Time) ([]*domain.StoryFeedEntry, error)
	GetExpired(ctx context.Context, now time.Time) ([]*domain.Story, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type storyRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewStoryRepository(db *pgxpool.Pool, log logger.Logger) StoryRepository {
	return &storyRepository{db: db, log: log}
}

func (r *storyRepository) Create(ctx context.Context, story *domain.Story) error {
	query := `
		INSERT INTO stories (id, user_id, media_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		story.ID, story.UserID, story.MediaURL, story.CreatedAt, story.ExpiresAt,
	).Scan(&story.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create story", "error", err, "user_id", story.UserID)
		return err
	}

	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	query := `
		SELECT id, user_id, media_url, created_at, expires_at
		FROM stories
		WHERE id = $1
	`

	story := &domain.Story{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&story.ID, &story.UserID, &story.MediaURL, &story.CreatedAt, &story.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStoryNotFound
		}
		r.log.Error("Failed to get story", "error", err, "story_id", id)
		return nil, err
	}

	return story, nil
}

func (r *storyRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Story, error) {
	query := `
		SELECT id, user_id, media_url, created_at, expires_at
		FROM stories
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		r.log.Error("Failed to get user stories", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	return scanStories(rows)
}

func (r *storyRepository) GetAllActive(ctx context.Context, now time.Time) ([]*domain.StoryFeedEntry, error) {
	query := `
		SELECT s.id, s.user_id, s.media_url, s.created_at, s.expires_at,
		       u.username, u.status, u.avatar_url
		FROM stories s
		JOIN users u ON u.id = s.user_id
		WHERE s.expires_at > $1
		ORDER BY s.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to get active stories", "error", err)
		return nil, err
	}
	defer rows.Close()

	// Группировка по пользователю с сохранением порядка первого появления
	var order []uuid.UUID
	byUser := make(map[uuid.UUID]*domain.StoryFeedEntry)

	for rows.Next() {
		story := &domain.Story{}
		user := domain.UserSummary{}
		err := rows.Scan(
			&story.ID, &story.UserID, &story.MediaURL, &story.CreatedAt, &story.ExpiresAt,
			&user.Username, &user.Status, &user.AvatarURL,
		)
		if err != nil {
			r.log.Error("Failed to scan story", "error", err)
			return nil, err
		}
		user.ID = story.UserID

		entry, ok := byUser[story.UserID]
		if !ok {
			entry = &domain.StoryFeedEntry{User: user}
			byUser[story.UserID] = entry
			order = append(order, story.UserID)
		}
		entry.Stories = append(entry.Stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	feed := make([]*domain.StoryFeedEntry, 0, len(order))
	for _, userID := range order {
		feed = append(feed, byUser[userID])
	}

	return feed, nil
}

func (r *storyRepository) GetExpired(ctx context.Context, now time.Time) ([]*domain.Story, error) {
	query := `
		SELECT id, user_id, media_url, created_at, expires_at
		FROM stories
		WHERE expires_at <= $1
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to get expired stories", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanStories(rows)
}

func (r *storyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM stories WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete story", "error", err, "story_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStoryNotFound
	}

	return nil
}

func scanStories(rows pgx.Rows) ([]*domain.Story, error) {
	var stories []*domain.Story
	for rows.Next() {
		story := &domain.Story{}
		err := rows.Scan(&story.ID, &story.UserID, &story.MediaURL, &story.CreatedAt, &story.ExpiresAt)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}
