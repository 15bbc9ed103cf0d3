// Package storage keeps uploaded documents on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var (
	ErrInvalidName = errors.New("invalid_file_name")
	ErrNotFound    = errors.New("file_not_found")
)

// Store is a flat directory of uploaded files addressed by name.
type Store struct {
	root      string
	urlPrefix string
}

// New creates root if needed. urlPrefix is the public route the files are
// served from, e.g. "/api/uploads".
func New(root, urlPrefix string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// UniqueName builds "<prefix><owner>_<8 hex chars><ext>".
func UniqueName(prefix, owner, ext string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + owner + "_" + token + strings.ToLower(ext)
}

// URL returns the public path for a stored name.
func (s *Store) URL(name string) string {
	return s.urlPrefix + "/" + name
}

// NameFromURL returns the file name at the end of a document URL.
func NameFromURL(url string) string {
	url = strings.TrimSpace(url)
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

func (s *Store) Save(name string, r io.Reader) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Remove deletes name. A file that is already gone is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func (s *Store) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", ErrInvalidName
	}
	return filepath.Join(s.root, name), nil
}

// DownloadName turns a stored name into a safe attachment file name,
// keeping the extension.
func DownloadName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := slug.Make(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "document"
	}
	return base + ext
}
