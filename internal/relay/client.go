package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"social_chat/internal/service"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 64
)

// Client - одно живое веб-сокет подключение. Пользователь может иметь
// несколько одновременных подключений (мультиустройство), каждое со своим
// независимым членством в комнатах.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	userID uuid.UUID

	// Буфер записи. Пишут и хаб, и горутина чтения, закрывает хаб,
	// поэтому доступ под мьютексом
	sendMu     sync.Mutex
	send       chan []byte
	sendClosed bool

	// Комнаты подключения; читается и мутируется только горутиной хаба
	rooms  map[string]struct{}
	closed bool

	chat service.ChatService
	log  logger.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, chat service.ChatService, log logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
		chat:   chat,
		log:    log,
	}
}

// Serve регистрирует подключение в хабе и запускает насосы чтения и записи.
// Блокируется до разрыва соединения.
func (c *Client) Serve() {
	c.hub.register <- c
	go c.writePump()
	c.readPump()
}

// readPump обрабатывает входящие события строго последовательно:
// второй send того же подключения не начнется раньше завершения первого
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected close", "error", err, "user_id", c.userID)
			}
			return
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.sendError("invalid event payload")
			continue
		}

		switch event.Type {
		case EventJoinRoom:
			c.hub.Join(c, event.RoomID)
		case EventSendMessage:
			c.handleSend(event)
		default:
			c.sendError("unknown event type")
		}
	}
}

func (c *Client) handleSend(event ClientEvent) {
	message, err := c.chat.SendMessage(context.Background(), event.RoomID, c.userID, event.Text, nil)
	if err != nil {
		// Ошибка уходит только отправителю, рассылки не происходит
		c.log.Warn("Send failed", "error", err, "user_id", c.userID, "room_id", event.RoomID)
		c.sendError(clientErrorMessage(err))
		return
	}

	c.hub.Broadcast(message.RoomID, message)
}

// clientErrorMessage сводит ошибку отправки к тексту для клиента.
// Детали хранилища наружу не уходят.
func clientErrorMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidMessage):
		return apperrors.ErrInvalidMessage.Error()
	case errors.Is(err, apperrors.ErrContentRejected):
		return apperrors.ErrContentRejected.Error()
	case errors.Is(err, apperrors.ErrBadRequest):
		return apperrors.ErrBadRequest.Error()
	default:
		return "failed to send message"
	}
}

func (c *Client) sendError(msg string) {
	payload, err := json.Marshal(ServerEvent{Type: EventMessageError, Error: msg})
	if err != nil {
		return
	}
	c.trySend(payload)
}

// trySend кладет payload в буфер записи без блокировки.
// false - если буфер полон или подключение уже снято с учета.
func (c *Client) trySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend закрывает буфер записи ровно один раз. Вызывается только хабом.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
