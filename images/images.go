package images

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/wedding-site/internal/errors"
)

const (
	FolderGallery = "gallery"
	FolderEvents  = "events"

	// CacheControl is served with every image; keys are never reused.
	CacheControl = "public, max-age=31536000, immutable"

	defaultContentType = "application/octet-stream"
)

var (
	Folders = []string{FolderGallery, FolderEvents}

	extensions = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
		"image/gif":  "gif",
	}
)

// Image is a stored upload. The bytes are kept exactly as received.
type Image struct {
	Key          string
	ContentType  string
	CacheControl string
	ETag         string
	Size         int64
	CreatedAt    time.Time
	Data         []byte
}

type Repo interface {
	Put(ctx context.Context, img *Image) error
	// Get returns errors.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (*Image, error)
	Delete(ctx context.Context, key string) error
}

func ValidFolder(folder string) bool {
	return slices.Contains(Folders, folder)
}

// Extension maps an allowed upload content type to its file extension.
func Extension(contentType string) (string, bool) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// NewKey returns "<folder>/<uuid>.<ext>" for a new upload.
func NewKey(folder, contentType string) (string, error) {
	if !ValidFolder(folder) {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "invalid folder %q", folder)
	}
	ext, ok := Extension(contentType)
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "invalid content type %q", contentType)
	}
	return folder + "/" + uuid.NewString() + "." + ext, nil
}

// ValidKey reports whether key lives under one of the known folders.
func ValidKey(key string) bool {
	for _, f := range Folders {
		if name, ok := strings.CutPrefix(key, f+"/"); ok && name != "" {
			return !slices.Contains(strings.Split(name, "/"), "..")
		}
	}
	return false
}

// ContentTypeOr returns the stored content type or the generic binary type.
func (i *Image) ContentTypeOr() string {
	if i.ContentType == "" {
		return defaultContentType
	}
	return i.ContentType
}

// CacheControlOr returns the stored cache policy or the immutable default.
func (i *Image) CacheControlOr() string {
	if i.CacheControl == "" {
		return CacheControl
	}
	return i.CacheControl
}

// PublicURL joins base and key, dropping one trailing slash from base.
func PublicURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
