package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_WritesAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, "https://cdn.example/")

	url, err := b.Upload(context.Background(), "product-images", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example/storage/product-images/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, "product-images", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestUpload_Rejects(t *testing.T) {
	dir := t.TempDir()
	b := New(dir, "http://localhost")
	ctx := context.Background()

	_, err := b.Upload(ctx, "product-images", strings.NewReader("x"), "text/plain")
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = b.Upload(ctx, "../etc", strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, ErrBadBucket)

	big := bytes.Repeat([]byte{1}, MaxObjectSize+1)
	_, err = b.Upload(ctx, "product-images", bytes.NewReader(big), "image/jpeg")
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(dir, "product-images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
