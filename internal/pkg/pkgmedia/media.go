package pkgmedia

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty, absolute, or escape the root.
var ErrInvalidKey = errors.New("invalid media key")

// Storage is the medium holding uploads and histogram images.
//
// Open and Exists report a missing object through fs.ErrNotExist so callers can
// use errors.Is regardless of the backend. Remove and RemovePrefix treat a
// missing object as already removed.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) error
	URL(key string) string
}

// IsNotExist reports whether err means the object is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// CleanKey validates a key and returns its canonical form.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}

	return cleaned, nil
}

// SafeName reduces an arbitrary name (a column header, a client file name) to
// characters that are safe in both file systems and URLs. Anything outside
// [A-Za-z0-9._-] becomes '_'; an empty result becomes "unnamed".
func SafeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "unnamed"
	}

	return out
}

func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
