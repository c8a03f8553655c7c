package rules

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bre-gateway/pkg/platform/sentinel"
)

// FSStorage reads rule documents from a directory tree. Logical paths map to
// relative file paths under the root (e.g. "kyc/eligibility_v1.json").
type FSStorage struct {
	root string
}

// NewFSStorage creates filesystem-backed rule storage rooted at dir.
func NewFSStorage(dir string) *FSStorage {
	return &FSStorage{root: dir}
}

// ReadRaw returns the document bytes at the logical path.
func (s *FSStorage) ReadRaw(_ context.Context, path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// WriteRaw stores document bytes at the logical path, creating parent
// directories as needed.
func (s *FSStorage) WriteRaw(_ context.Context, path string, raw []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// List returns the logical paths of all stored JSON documents.
func (s *FSStorage) List(_ context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".json") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return paths, nil
}

// resolve confines logical paths to the storage root so callers cannot escape
// it with "..".
func (s *FSStorage) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == "/" {
		return "", fmt.Errorf("resolve %q: %w", path, sentinel.ErrInvalidState)
	}
	return filepath.Join(s.root, clean), nil
}
