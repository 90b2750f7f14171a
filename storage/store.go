// store.go - Media storage interface and key generation

package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded media under opaque keys.
type Store interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	// URL returns an absolute address for key. baseURL is the scheme and
	// host of the current request; backends with their own public host
	// ignore it.
	URL(baseURL, key string) string
}

// NewKey returns "<prefix>/<uuid><ext>", keeping the lowercased extension of
// filename.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.New().String(), ext)
}

// IsAbsolute reports whether a stored value is already a full URL.
func IsAbsolute(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

// Resolve renders a stored value as an absolute URL. Absolute values pass
// through untouched.
func Resolve(s Store, baseURL, value string) string {
	if value == "" || IsAbsolute(value) {
		return value
	}
	return s.URL(baseURL, value)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
