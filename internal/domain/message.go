package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        int64     `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"message"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasContent - сообщение валидно, только если есть текст или картинка
func (m *Message) HasContent() bool {
	if strings.TrimSpace(m.Text) != "" {
		return true
	}
	return m.ImageURL != nil && *m.ImageURL != ""
}
