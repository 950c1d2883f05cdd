package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"queueless/internal/pkg/apperr"
)

const (
	DefaultMaxBytes = 6 * 1024 * 1024 // 6 MB
	DefaultBaseDir  = "./uploads"
	DefaultURLBase  = "/static/uploads"

	KindLogo   = "logos"
	KindAvatar = "avatars"
)

var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

var (
	ErrEmptyImage   = apperr.Validation("image is empty")
	ErrInvalidImage = apperr.Validation("image must be base64-encoded PNG or JPEG")
	ErrImageTooBig  = apperr.Validation("image exceeds the size limit")
)

// Store keeps logos and avatars on local disk and serves them under urlBase.
type Store struct {
	baseDir  string
	urlBase  string
	maxBytes int64
}

func NewStore(baseDir, urlBase string, maxBytes int64) *Store {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if urlBase == "" {
		urlBase = DefaultURLBase
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{baseDir: baseDir, urlBase: strings.TrimRight(urlBase, "/"), maxBytes: maxBytes}
}

// SaveBase64Image accepts a data URL ("data:image/png;base64,...") or raw
// base64, checks the real content type and writes <dir>/<kind>/<uuid>.<ext>.
func (s *Store) SaveBase64Image(ctx context.Context, kind, payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return "", ErrEmptyImage
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.Contains(payload[:idx], ";base64") {
			return "", ErrInvalidImage
		}
		payload = payload[idx+1:]
	}

	// 4 base64 chars carry 3 bytes
	if int64(len(payload))/4*3 > s.maxBytes+3 {
		return "", ErrImageTooBig
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidImage
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrImageTooBig
	}

	mimeType := strings.Split(http.DetectContentType(data), ";")[0]
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return "", ErrInvalidImage
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.baseDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return s.urlBase + "/" + kind + "/" + name, nil
}

// Delete removes a file previously returned by SaveBase64Image. URLs that do
// not belong to the store are ignored.
func (s *Store) Delete(url string) error {
	if !strings.HasPrefix(url, s.urlBase+"/") {
		return nil
	}
	rel := strings.TrimPrefix(url, s.urlBase+"/")
	if strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
