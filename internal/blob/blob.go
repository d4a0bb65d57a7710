// Package blob persists raw file payloads independently of their metadata
// records. A Store maps a logical name to durable bytes under a fixed storage
// root; collisions overwrite in place.
package blob

import (
	"context"
	"io"
	"path"
	"strings"
)

// Store is the contract shared by all blob backends.
type Store interface {
	// Save persists the payload under a sanitized form of name and returns
	// the stored name. Existing blobs with the same name are replaced.
	Save(ctx context.Context, name string, payload io.Reader) (string, error)
	// Open returns a reader for the blob at the given physical path.
	Open(ctx context.Context, physicalPath string) (io.ReadCloser, error)
	// Remove deletes the blob at the given physical path. Absence is not an
	// error; only I/O failures are reported.
	Remove(ctx context.Context, physicalPath string) error
}

// sanitizeName validates a logical blob name. Names with parent-directory
// segments or that are empty after cleaning are rejected.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")

	if name == "" {
		return "", ErrInvalidName
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", ErrInvalidName
		}
	}

	cleaned := path.Clean("/" + name)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidName
	}
	return cleaned, nil
}
