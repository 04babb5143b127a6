package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG: a single transparent pixel.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, 1024)

	url, err := store.SaveImage(bytes.NewReader(pngPixel))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, PublicPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))

	written, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, PublicPrefix)))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, written)

	require.NoError(t, store.Remove(url))
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(url, PublicPrefix)))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, store.Remove(url), "removing twice is fine")
}

func TestSaveImageRejects(t *testing.T) {
	testCases := []struct {
		name     string
		content  []byte
		maxBytes int64
		expected error
	}{
		{name: "Plain text", content: []byte("hello, not an image"), maxBytes: 1024, expected: ErrNotImage},
		{name: "PDF", content: []byte("%PDF-1.4\n%âãÏÓ\n"), maxBytes: 1024, expected: ErrNotImage},
		{name: "Too large", content: pngPixel, maxBytes: 16, expected: ErrTooLarge},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewStore(dir, tc.maxBytes)

			_, err := store.SaveImage(bytes.NewReader(tc.content))
			assert.ErrorIs(t, err, tc.expected)

			entries, _ := os.ReadDir(dir)
			assert.Empty(t, entries, "nothing is written on rejection")
		})
	}
}

func TestRemoveIgnoresForeignURLs(t *testing.T) {
	store := NewStore(t.TempDir(), 0)
	assert.Equal(t, int64(DefaultMaxBytes), store.MaxBytes())
	assert.NoError(t, store.Remove("https://cdn.example.com/a.png"))
	assert.NoError(t, store.Remove(PublicPrefix))
}
