package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// AllowedImageFormats are the extensions accepted by every asset store.
var AllowedImageFormats = []string{"jpg", "jpeg", "png", "webp"}

// Upload is the binary content of an image supplied by a caller.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// UploadConstraints tells the store where to put the asset and which formats to accept.
type UploadConstraints struct {
	Folder         string
	AllowedFormats []string
}

// AssetStore is the remote object store holding listing and profile images.
// Upload rejects formats outside constraints with ErrUnsupportedFormat.
// Delete of an unknown handle succeeds.
type AssetStore interface {
	Upload(ctx context.Context, upload Upload, constraints UploadConstraints) (Image, error)
	Delete(ctx context.Context, handle string) error
}

// Extension returns the lower-cased extension of fileName without the dot, or
// ErrUnsupportedFormat when it is not in AllowedFormats. An empty AllowedFormats accepts any extension.
func (c UploadConstraints) Extension(fileName string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, fileName)
	}
	if len(c.AllowedFormats) == 0 {
		return ext, nil
	}
	for _, allowed := range c.AllowedFormats {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}
