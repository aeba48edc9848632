// Package filestore stores uploaded files (book PDFs, cover images) on
// local disk under a configured base directory. Paths returned by Save are
// relative and URL-safe so they can be served by the fileserver mount and
// stored on documents.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store writes and removes uploaded files under BasePath.
type Store struct {
	basePath string
}

// New creates a Store rooted at basePath, creating the directory if needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// BasePath returns the root directory files are stored under.
func (s *Store) BasePath() string { return s.basePath }

// Save stores the reader's content under a unique generated path:
// kind/YYYY/MM/uuid-filename. It returns the relative path and bytes written.
func (s *Store) Save(kind, filename string, r io.Reader) (string, int64, error) {
	now := time.Now().UTC()
	rel := filepath.ToSlash(filepath.Join(
		kind,
		fmt.Sprintf("%04d/%02d", now.Year(), now.Month()),
		fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename)),
	))

	abs := filepath.Join(s.basePath, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", 0, fmt.Errorf("create upload subdir: %w", err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", 0, fmt.Errorf("create upload file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(abs)
		return "", 0, fmt.Errorf("write upload file: %w", err)
	}
	return rel, n, nil
}

// Open opens a previously saved file by its relative path.
func (s *Store) Open(rel string) (*os.File, error) {
	abs, err := s.abs(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

// Remove deletes a previously saved file. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	abs, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// abs resolves rel under basePath, rejecting traversal outside it.
func (s *Store) abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid file path %q", rel)
	}
	return filepath.Join(s.basePath, clean), nil
}

// sanitizeFilename strips path components and replaces characters that are
// awkward in filenames or URLs.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	var b strings.Builder
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
