// Package imagestore keeps product photos as plain files in one directory.
// Products reference images by file name only.
package imagestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Placeholder is the shared "no photo" image. It is never removed.
const Placeholder = "picture.png"

var (
	ErrInvalidName      = errors.New("invalid image file name")
	ErrUnsupportedImage = errors.New("unsupported image type, use png, jpg, jpeg, bmp or gif")
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// FileName builds the stored name for an article's image, keeping the
// extension of the uploaded file. Articles that are not a plain file name
// are rejected.
func FileName(article, uploaded string) (string, error) {
	ext := strings.ToLower(filepath.Ext(uploaded))
	if !allowedExt[ext] {
		return "", ErrUnsupportedImage
	}
	if article == "" || strings.ContainsAny(article, `/\`) {
		return "", ErrInvalidName
	}
	name, err := clean(article + ext)
	if err != nil {
		return "", err
	}
	if name != article+ext {
		return "", ErrInvalidName
	}
	return name, nil
}

func clean(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." || base == "" {
		return "", ErrInvalidName
	}
	return base, nil
}

// Path returns the on-disk location of name inside the store.
func (s *Store) Path(name string) (string, error) {
	base, err := clean(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, base), nil
}

// Save writes src under name, replacing any existing file atomically.
func (s *Store) Save(name string, src io.Reader) (string, error) {
	dest, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	return filepath.Base(dest), nil
}

// Remove deletes name. A missing file, an empty name and the placeholder are no-ops.
func (s *Store) Remove(name string) error {
	if name == "" || name == Placeholder {
		return nil
	}
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
