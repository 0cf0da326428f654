package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"social_chat/internal/config"
	apperrors "social_chat/pkg/errors"
	"social_chat/pkg/logger"
)

// MediaService - локальное объектное хранилище для картинок сообщений,
// аватаров и медиа историй. Файлы раздаются статикой под BaseURL.
type MediaService interface {
	// Save сохраняет загруженный файл и возвращает публичный URL
	Save(ctx context.Context, file *multipart.FileHeader, allowVideo bool) (string, error)
	// Delete удаляет объект по его публичному URL
	Delete(ctx context.Context, mediaURL string) error
}

type mediaService struct {
	cfg config.MediaConfig
	log logger.Logger
}

func NewMediaService(cfg config.MediaConfig, log logger.Logger) (MediaService, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &mediaService{cfg: cfg, log: log}, nil
}

func (s *mediaService) Save(ctx context.Context, file *multipart.FileHeader, allowVideo bool) (string, error) {
	if file.Size > s.cfg.MaxFileSize {
		return "", apperrors.ErrBadRequest
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return "", apperrors.ErrBadRequest
	}

	// Тип определяем по содержимому, расширению имени не доверяем
	mtype := mimetype.Detect(data)
	if !isAllowedMedia(mtype.String(), allowVideo) {
		s.log.Warn("Rejected upload", "mime", mtype.String(), "name", file.Filename)
		return "", apperrors.ErrUnsupportedMedia
	}

	name := uuid.New().String() + mtype.Extension()
	dst := filepath.Join(s.cfg.UploadDir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		s.log.Error("Failed to write media file", "error", err, "path", dst)
		return "", fmt.Errorf("failed to store media: %w", err)
	}

	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + name, nil
}

func (s *mediaService) Delete(ctx context.Context, mediaURL string) error {
	name := path.Base(mediaURL)
	if name == "." || name == "/" || name == "" {
		return apperrors.ErrBadRequest
	}

	// Защита от выхода за пределы каталога загрузок
	dst := filepath.Join(s.cfg.UploadDir, filepath.Base(name))
	if err := os.Remove(dst); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return nil
}

func isAllowedMedia(mime string, allowVideo bool) bool {
	if strings.HasPrefix(mime, "image/") {
		return true
	}
	if allowVideo && (mime == "video/mp4" || mime == "video/webm") {
		return true
	}
	return false
}
