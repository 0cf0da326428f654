package domain

import (
	"time"

	"github.com/google/uuid"
)

type Story struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MediaURL  string    `json:"media_url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StoryTTL - время жизни истории с момента публикации
const StoryTTL = 24 * time.Hour

// StoryFeedEntry группирует активные истории одного пользователя для общей ленты
type StoryFeedEntry struct {
	User    UserSummary `json:"user"`
	Stories []*Story    `json:"stories"`
}

func (s *Story) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
