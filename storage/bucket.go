// Package storage keeps uploaded files in named buckets on local disk and
// hands out their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxObjectSize = 5 << 20

var (
	ErrTooLarge        = errors.New("file exceeds 5 MiB")
	ErrUnsupportedType = errors.New("only image uploads are accepted")
	ErrBadBucket       = errors.New("invalid bucket name")
)

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Bucket struct {
	root    string
	baseURL string
}

func New(root, publicBaseURL string) *Bucket {
	return &Bucket{root: root, baseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Root is the directory served under /storage.
func (b *Bucket) Root() string { return b.root }

// Upload stores r under bucket with a fresh name and returns its public URL.
func (b *Bucket) Upload(ctx context.Context, bucket string, r io.Reader, contentType string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\.`) {
		return "", ErrBadBucket
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", ErrUnsupportedType
	}
	ext, ok := imageExt[mt]
	if !ok {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(b.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxObjectSize+1))
	closeErr := f.Close()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil && n > MaxObjectSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write object: %w", err)
	}
	return fmt.Sprintf("%s/storage/%s/%s", b.baseURL, bucket, name), nil
}
