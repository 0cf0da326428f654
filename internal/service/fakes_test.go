package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"time"

	"github.com/google/uuid"
	"social_chat/internal/domain"
	apperrors "social_chat/pkg/errors"
)

// Фейки хранилищ для юнит-тестов сервисного слоя

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room

	getErr    error
	createErr error
	getCalls  int
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*domain.Room)}
}

func (f *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	room, ok := f.rooms[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *room
	return &copied, nil
}

func (f *fakeRoomRepo) CreateIfAbsent(ctx context.Context, room *domain.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.rooms[room.ID]; exists {
		return nil
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	copied := *room
	f.rooms[room.ID] = &copied
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[int64]*domain.Message
	nextID   int64

	createErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[int64]*domain.Message), nextID: 1}
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	message.ID = f.nextID
	f.nextID++
	message.CreatedAt = time.Now()
	copied := *message
	f.messages[message.ID] = &copied
	return nil
}

func (f *fakeMessageRepo) GetByRoom(ctx context.Context, roomID string) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Message
	for id := int64(1); id < f.nextID; id++ {
		if m, ok := f.messages[id]; ok && m.RoomID == roomID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMessageRepo) Delete(ctx context.Context, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[messageID]; !ok {
		return apperrors.ErrMessageNotFound
	}
	delete(f.messages, messageID)
	return nil
}

type fakeBadWordRepo struct {
	words []string
	err   error
}

func (f *fakeBadWordRepo) ListWords(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

type fakeMedia struct {
	mu      sync.Mutex
	saved   []string
	deleted []string

	saveErr   error
	deleteErr error
}

func (f *fakeMedia) Save(ctx context.Context, file *multipart.FileHeader, allowVideo bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	url := "http://localhost:8080/uploads/" + uuid.New().String() + ".png"
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeMedia) Delete(ctx context.Context, mediaURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, mediaURL)
	return f.deleteErr
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*domain.User
	sessions map[string]*domain.UserSession
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]*domain.User),
		sessions: make(map[string]*domain.UserSession),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperrors.ErrUserAlreadyExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.UserSummary
	for _, u := range f.users {
		summary := u.Summary()
		out = append(out, &summary)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.AvatarURL = &avatarURL
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) CreateSession(ctx context.Context, session *domain.UserSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.RefreshTokenHash] = &copied
	return nil
}

func (f *fakeUserRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.UserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[tokenHash]
	if !ok || s.RevokedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeUserRepo) RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == sessionID {
			now := time.Now()
			s.RevokedAt = &now
			s.RevokedReason = &reason
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type fakeStoryRepo struct {
	mu      sync.Mutex
	stories map[uuid.UUID]*domain.Story

	createErr error
	deleteErr error
}

func newFakeStoryRepo() *fakeStoryRepo {
	return &fakeStoryRepo{stories: make(map[uuid.UUID]*domain.Story)}
}

func (f *fakeStoryRepo) Create(ctx context.Context, story *domain.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *story
	f.stories[story.ID] = &copied
	return nil
}

func (f *fakeStoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stories[id]
	if !ok {
		return nil, apperrors.ErrStoryNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStoryRepo) GetActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Story
	for _, s := range f.stories {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStoryRepo) GetAllActive(ctx context.Context, now time.Time) ([]*domain.StoryFeedEntry, error) {
	return nil, errors.New("not implemented in fake")
}

func (f *fakeStoryRepo) GetExpired(ctx context.Context, now time.Time) ([]*domain.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Story
	for _, s := range f.stories {
		if !s.ExpiresAt.After(now) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.stories[id]; !ok {
		return apperrors.ErrStoryNotFound
	}
	delete(f.stories, id)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
func (nopLogger) Fatal(msg string, args ...any) {}
