package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	RoomTypePrivate = "private"
)

// PairRoomID строит канонический идентификатор комнаты для пары участников.
// Результат не зависит от порядка аргументов: оба клиента получают один и тот же ключ.
func PairRoomID(a, b string) string {
	ids := []string{strings.TrimSpace(a), strings.TrimSpace(b)}
	sort.Strings(ids)
	return ids[0] + "-" + ids[1]
}

// DefaultRoomName - отображаемое имя по умолчанию для лениво созданной комнаты
func DefaultRoomName(roomID string) string {
	return fmt.Sprintf("Room %s", roomID)
}
