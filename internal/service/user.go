package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"social_chat/internal/domain"
	"social_chat/internal/repository"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

type UserService interface {
	List(ctx context.Context) ([]*domain.UserSummary, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, username, email, status string) (*domain.User, error)
	UploadAvatar(ctx context.Context, id uuid.UUID, file *multipart.FileHeader) (*domain.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo repository.UserRepository
	media    MediaService
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, media MediaService, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		media:    media,
		log:      log,
	}
}

func (s *userService) List(ctx context.Context) ([]*domain.UserSummary, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, username, email, status string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username != "" {
		if len(username) > 50 {
			return nil, errors.New("username is too long (max 50 characters)")
		}
		user.Username = username
	}
	if email != "" {
		if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
			return nil, errors.New("invalid email format")
		}
		user.Email = email
	}
	if status != "" {
		user.Status = status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, id uuid.UUID, file *multipart.FileHeader) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.media.Save(ctx, file, false)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateAvatar(ctx, id, avatarURL); err != nil {
		// Запись не обновилась - подчищаем только что сохраненный файл
		if derr := s.media.Delete(ctx, avatarURL); derr != nil {
			s.log.Warn("Failed to clean up avatar after failed update", "error", derr)
		}
		return nil, err
	}

	// Старый аватар больше не нужен
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.media.Delete(ctx, *user.AvatarURL); err != nil {
			s.log.Warn("Failed to delete old avatar", "error", err, "user_id", id)
		}
	}

	user.AvatarURL = &avatarURL
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.media.Delete(ctx, *user.AvatarURL); err != nil {
			s.log.Warn("Failed to delete avatar", "error", err, "user_id", id)
		}
	}

	s.log.Info("User account deleted", "user_id", id)
	return nil
}
