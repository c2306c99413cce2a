package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartImageRequest(t *testing.T) *http.Request {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()

	e := echo.New()
	c := e.NewContext(multipartImageRequest(t), httptest.NewRecorder())

	file, err := c.FormFile("image")
	require.NoError(t, err)

	name, err := SaveImage(file, dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, "photo.jpg", name, "stored name must not reuse the client filename")

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSaveImageCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	e := echo.New()
	c := e.NewContext(multipartImageRequest(t), httptest.NewRecorder())
	file, err := c.FormFile("image")
	require.NoError(t, err)

	_, err = SaveImage(file, dir)
	assert.NoError(t, err)
}

func TestRemoveImagesIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	RemoveImages(dir, "a.jpg", "missing.jpg", "")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Second pass over already-deleted files must be a no-op.
	RemoveImages(dir, "a.jpg", "missing.jpg")
}
