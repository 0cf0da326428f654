package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"social_chat/internal/domain"
	apperrors "social_chat/pkg/errors"
)

// Фейковый чат-сервис для прогона насосов через реальные соединения
type wireChat struct {
	nextID int64
}

func (f *wireChat) SendMessage(ctx context.Context, roomID string, senderID uuid.UUID, text string, imageURL *string) (*domain.Message, error) {
	switch text {
	case "badword":
		return nil, apperrors.ErrContentRejected
	case "boom":
		return nil, fmt.Errorf("%w: connection refused by host db-1", apperrors.ErrStorageUnavailable)
	}
	return &domain.Message{
		ID:        atomic.AddInt64(&f.nextID, 1),
		RoomID:    roomID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}, nil
}

func (f *wireChat) GetMessages(ctx context.Context, roomID string) ([]*domain.Message, error) {
	return nil, nil
}

func (f *wireChat) GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]*domain.Message, error) {
	return nil, nil
}

func (f *wireChat) DeleteMessage(ctx context.Context, messageID int64, requesterID uuid.UUID) error {
	return nil
}

func startWireServer(t *testing.T, hub *Hub, chat *wireChat) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		userID, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			userID = uuid.New()
		}
		NewClient(hub, conn, userID, chat, nopLogger{}).Serve()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialWire(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, event ClientEvent) {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

func readEvent(t *testing.T, conn *websocket.Conn) ServerEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var event ServerEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, payload, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("unexpected frame: %s", payload)
	}
}

func TestServe_BroadcastOverWire(t *testing.T) {
	hub := startHub(t)
	srv := startWireServer(t, hub, &wireChat{})

	alice := uuid.New()
	bob := uuid.New()
	aliceConn := dialWire(t, srv, alice)
	bobConn := dialWire(t, srv, bob)

	// Отправитель получает собственное сообщение вместе с остальными
	writeEvent(t, aliceConn, ClientEvent{Type: EventJoinRoom, RoomID: "a-b"})
	writeEvent(t, aliceConn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: "hello"})

	event := readEvent(t, aliceConn)
	assert.Equal(t, EventReceiveMessage, event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hello", event.Message.Text)
	assert.Equal(t, alice, event.Message.SenderID)
	assert.False(t, event.Message.CreatedAt.IsZero())

	// Второй участник после join получает рассылку наравне с отправителем
	writeEvent(t, bobConn, ClientEvent{Type: EventJoinRoom, RoomID: "a-b"})
	writeEvent(t, bobConn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: "hi there"})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		event := readEvent(t, conn)
		assert.Equal(t, EventReceiveMessage, event.Type)
		require.NotNil(t, event.Message)
		assert.Equal(t, "hi there", event.Message.Text)
		assert.Equal(t, bob, event.Message.SenderID)
	}
}

func TestServe_ErrorOnlyToSender(t *testing.T) {
	hub := startHub(t)
	srv := startWireServer(t, hub, &wireChat{})

	aliceConn := dialWire(t, srv, uuid.New())
	bobConn := dialWire(t, srv, uuid.New())

	// Подтверждаем членство обоих перед отправкой плохого сообщения
	writeEvent(t, aliceConn, ClientEvent{Type: EventJoinRoom, RoomID: "a-b"})
	writeEvent(t, aliceConn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: "warmup-a"})
	readEvent(t, aliceConn)

	writeEvent(t, bobConn, ClientEvent{Type: EventJoinRoom, RoomID: "a-b"})
	writeEvent(t, bobConn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: "warmup-b"})
	readEvent(t, aliceConn)
	readEvent(t, bobConn)

	writeEvent(t, aliceConn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: "badword"})

	event := readEvent(t, aliceConn)
	assert.Equal(t, EventMessageError, event.Type)
	assert.Equal(t, apperrors.ErrContentRejected.Error(), event.Error)
	assert.Nil(t, event.Message)

	expectSilence(t, bobConn)
}

func TestServe_StorageDetailNotLeaked(t *testing.T) {
	hub := startHub(t)
	srv := startWireServer(t, hub, &wireChat{})

	conn := dialWire(t, srv, uuid.New())
	writeEvent(t, conn, ClientEvent{Type: EventJoinRoom, RoomID: "a-b"})
	writeEvent(t, conn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: "boom"})

	event := readEvent(t, conn)
	assert.Equal(t, EventMessageError, event.Type)
	assert.Equal(t, "failed to send message", event.Error)
	assert.NotContains(t, event.Error, "db-1")
}

func TestServe_SequentialDelivery(t *testing.T) {
	hub := startHub(t)
	srv := startWireServer(t, hub, &wireChat{})

	conn := dialWire(t, srv, uuid.New())
	writeEvent(t, conn, ClientEvent{Type: EventJoinRoom, RoomID: "a-b"})

	// Насос чтения обрабатывает события строго по одному,
	// порядок доставки совпадает с порядком отправки
	texts := []string{"m1", "m2", "m3", "m4", "m5"}
	for _, text := range texts {
		writeEvent(t, conn, ClientEvent{Type: EventSendMessage, RoomID: "a-b", Text: text})
	}

	var prevID int64
	for _, text := range texts {
		event := readEvent(t, conn)
		require.Equal(t, EventReceiveMessage, event.Type)
		require.NotNil(t, event.Message)
		assert.Equal(t, text, event.Message.Text)
		assert.Greater(t, event.Message.ID, prevID)
		prevID = event.Message.ID
	}
}

func TestServe_MalformedEvents(t *testing.T) {
	hub := startHub(t)
	srv := startWireServer(t, hub, &wireChat{})

	conn := dialWire(t, srv, uuid.New())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	event := readEvent(t, conn)
	assert.Equal(t, EventMessageError, event.Type)
	assert.Equal(t, "invalid event payload", event.Error)

	writeEvent(t, conn, ClientEvent{Type: "dance"})
	event = readEvent(t, conn)
	assert.Equal(t, EventMessageError, event.Type)
	assert.Equal(t, "unknown event type", event.Error)
}
