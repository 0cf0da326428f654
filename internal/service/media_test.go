package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"social_chat/internal/config"
	apperrors "social_chat/pkg/errors"
)

// pngBytes - минимальный валидный заголовок PNG для определения типа по содержимому
func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}
}

func mp4Bytes() []byte {
	return []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 0, 0, 'i', 's', 'o', 'm'}
}

func fileHeaderWith(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func pngFileHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	return fileHeaderWith(t, "pic.png", pngBytes())
}

func newMediaServiceForTest(t *testing.T) (MediaService, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewMediaService(config.MediaConfig{
		UploadDir:   dir,
		BaseURL:     "http://localhost:8080/uploads",
		MaxFileSize: 1 << 20,
	}, nopLogger{})
	require.NoError(t, err)
	return svc, dir
}

func TestMediaSave_PNG(t *testing.T) {
	svc, dir := newMediaServiceForTest(t)

	url, err := svc.Save(context.Background(), pngFileHeader(t), false)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	stored, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), stored)
}

func TestMediaSave_RejectsNonMedia(t *testing.T) {
	svc, _ := newMediaServiceForTest(t)

	// Расширение картинки не спасает текстовое содержимое
	header := fileHeaderWith(t, "notes.png", []byte("just plain text, not an image"))
	_, err := svc.Save(context.Background(), header, false)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)
}

func TestMediaSave_VideoGatedByFlag(t *testing.T) {
	svc, _ := newMediaServiceForTest(t)

	header := fileHeaderWith(t, "clip.mp4", mp4Bytes())
	_, err := svc.Save(context.Background(), header, false)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedMedia)

	header = fileHeaderWith(t, "clip.mp4", mp4Bytes())
	url, err := svc.Save(context.Background(), header, true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".mp4"))
}

func TestMediaSave_RejectsOversize(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewMediaService(config.MediaConfig{
		UploadDir:   dir,
		BaseURL:     "http://localhost:8080/uploads",
		MaxFileSize: 8,
	}, nopLogger{})
	require.NoError(t, err)

	_, err = svc.Save(context.Background(), pngFileHeader(t), false)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestMediaDelete(t *testing.T) {
	svc, dir := newMediaServiceForTest(t)

	url, err := svc.Save(context.Background(), pngFileHeader(t), false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), url))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Повторное удаление не ошибка
	assert.NoError(t, svc.Delete(context.Background(), url))
}

func TestMediaDelete_IgnoresPathTraversal(t *testing.T) {
	svc, dir := newMediaServiceForTest(t)

	outside := filepath.Join(filepath.Dir(dir), "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))
	t.Cleanup(func() { os.Remove(outside) })

	require.NoError(t, svc.Delete(context.Background(), "http://localhost:8080/uploads/../outside.txt"))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}
