package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are not jpeg, png or gif.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrImageTooLarge is returned when the raw upload exceeds the size cap.
	ErrImageTooLarge = errors.New("image too large")
)

// ImageKind selects the resize bounds for an upload.
type ImageKind string

const (
	KindAvatar ImageKind = "avatar"
	KindPost   ImageKind = "post"
)

// ImageService stores processed upload images. SaveImage consumes the raw
// upload bytes and returns the stored key, or an upload error when the bytes
// are not a decodable image.
type ImageService interface {
	SaveImage(ctx context.Context, r io.Reader, kind ImageKind) (string, error)
	DeleteImage(ctx context.Context, key string) error
	ImageURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
