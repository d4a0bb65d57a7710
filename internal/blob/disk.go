package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs as plain files under a fixed storage root.
type DiskStore struct {
	root string
}

// NewDiskStore resolves the storage root and ensures it exists.
func NewDiskStore(dir string) (*DiskStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	root = filepath.Clean(root)

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &DiskStore{root: root}, nil
}

// Root returns the absolute storage root.
func (s *DiskStore) Root() string {
	return s.root
}

// Save writes the payload under a sanitized name, replacing any existing blob.
func (s *DiskStore) Save(ctx context.Context, name string, payload io.Reader) (string, error) {
	stored, err := sanitizeName(name)
	if err != nil {
		return "", err
	}

	target, err := s.resolve(stored)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(target); dir != s.root {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("create blob directory: %w", err)
		}
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create blob %s: %w", stored, err)
	}

	if _, err := io.Copy(f, payload); err != nil {
		f.Close()
		return "", fmt.Errorf("write blob %s: %w", stored, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob %s: %w", stored, err)
	}

	return stored, nil
}

// Open returns a reader for the blob at physicalPath.
func (s *DiskStore) Open(ctx context.Context, physicalPath string) (io.ReadCloser, error) {
	target, err := s.resolve(physicalPath)
	if err != nil {
		return nil, ErrNotFound
	}

	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", physicalPath, err)
	}
	return f, nil
}

// Remove deletes the blob at physicalPath. A missing blob is not an error.
func (s *DiskStore) Remove(ctx context.Context, physicalPath string) error {
	target, err := s.resolve(physicalPath)
	if err != nil {
		return nil
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob %s: %w", physicalPath, err)
	}
	return nil
}

// resolve normalizes p relative to the root and enforces containment.
func (s *DiskStore) resolve(p string) (string, error) {
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.root, filepath.FromSlash(p))
	}
	target = filepath.Clean(target)

	if target != s.root && !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return "", ErrInvalidName
	}
	return target, nil
}
