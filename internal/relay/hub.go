package relay

import (
	"context"
	"encoding/json"

	"social_chat/internal/domain"
	"social_chat/pkg/logger"
)

// Hub держит группы доставки: roomID -> множество живых подключений.
// Состояние не персистентно и живет только внутри одного процесса;
// после рестарта клиенты восстанавливают членство повторным join_room.
//
// Все мутации карт выполняются единственной горутиной Run, поэтому
// блокировки не нужны.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	broadcast  chan broadcastRequest

	rooms map[string]map[*Client]struct{}
	log   logger.Logger
}

type joinRequest struct {
	client *Client
	roomID string
}

type broadcastRequest struct {
	roomID  string
	payload []byte
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		broadcast:  make(chan broadcastRequest, 64),
		rooms:      make(map[string]map[*Client]struct{}),
		log:        log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.log.Info("Client connected", "user_id", client.userID)

		case client := <-h.unregister:
			h.removeClient(client)

		case req := <-h.join:
			h.joinRoom(req.client, req.roomID)

		case req := <-h.broadcast:
			h.fanOut(req.roomID, req.payload)
		}
	}
}

// Join добавляет подключение в группу доставки комнаты.
// Повторный join той же комнаты - no-op.
func (h *Hub) Join(client *Client, roomID string) {
	h.join <- joinRequest{client: client, roomID: roomID}
}

// Broadcast рассылает сохраненное сообщение всем участникам группы,
// включая подключение отправителя
func (h *Hub) Broadcast(roomID string, message *domain.Message) {
	payload, err := json.Marshal(ServerEvent{Type: EventReceiveMessage, Message: message})
	if err != nil {
		h.log.Error("Failed to marshal broadcast", "error", err, "room_id", roomID)
		return
	}
	h.broadcast <- broadcastRequest{roomID: roomID, payload: payload}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if roomID == "" || client.closed {
		return
	}

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}

	if _, joined := members[client]; joined {
		return
	}

	members[client] = struct{}{}
	client.rooms[roomID] = struct{}{}
	h.log.Debug("Client joined room", "user_id", client.userID, "room_id", roomID)
}

func (h *Hub) removeClient(client *Client) {
	if client.closed {
		return
	}
	client.closed = true

	for roomID := range client.rooms {
		if members, ok := h.rooms[roomID]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	client.rooms = make(map[string]struct{})
	client.closeSend()
	h.log.Info("Client disconnected", "user_id", client.userID)
}

func (h *Hub) fanOut(roomID string, payload []byte) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}

	for client := range members {
		if !client.trySend(payload) {
			// Медленный получатель: буфер записи переполнен, отключаем
			h.log.Warn("Dropping slow client", "user_id", client.userID, "room_id", roomID)
			h.removeClient(client)
		}
	}
}
