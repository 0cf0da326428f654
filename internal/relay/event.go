package relay

import "social_chat/internal/domain"

// События клиент -> сервер
const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
)

// События сервер -> клиент
const (
	EventReceiveMessage = "receive_message"
	EventMessageError   = "message_error"
)

// ClientEvent - входящее событие по веб-сокету
type ClientEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	Text   string `json:"message"`
}

// ServerEvent - исходящее событие. Для receive_message заполнено Message
// (уже сохраненное, с серверными id и created_at), для message_error - Error.
type ServerEvent struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}
