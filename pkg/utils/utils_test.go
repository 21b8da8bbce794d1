package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	path := filepath.Join(t.TempDir(), "specimen.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestImageDimensions(t *testing.T) {
	u := New()
	path := writePNG(t, 800, 600)

	w, h, err := u.ImageDimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	bad := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, _, err = u.ImageDimensions(bad)
	assert.Error(t, err)

	_, _, err = u.ImageDimensions(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestPrepareImageForVision(t *testing.T) {
	u := New()
	path := writePNG(t, 2000, 1000)

	data, mime, err := u.PrepareImageForVision(path, 1024)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestThumbnail(t *testing.T) {
	u := New()
	path := writePNG(t, 400, 200)

	data, err := u.Thumbnail(path, 100)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestValidateImageFile(t *testing.T) {
	u := New()
	header := func(name, contentType string, size int64) *multipart.FileHeader {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", contentType)
		return &multipart.FileHeader{Filename: name, Header: h, Size: size}
	}

	assert.ErrorIs(t, u.ValidateImageFile(nil), ErrNoFile)
	assert.NoError(t, u.ValidateImageFile(header("a.png", "image/png", 10)))
	assert.NoError(t, u.ValidateImageFile(header("a.TIF", "application/octet-stream", 10)))
	assert.ErrorIs(t, u.ValidateImageFile(header("a.txt", "text/plain", 10)), ErrUnsupportedType)
	assert.ErrorIs(t, u.ValidateImageFile(header("a.png", "image/png", 1<<30)), ErrFileTooLarge)
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	a, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	b, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
