package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned when a content file does not exist
	ErrNotFound = fmt.Errorf("content file not found: %w", fs.ErrNotExist)
	// ErrInvalidPath is returned for names that would leave the content root
	ErrInvalidPath = errors.New("invalid content path")
	// ErrNotUTF8 is returned by ReadText for files that are not valid UTF-8
	ErrNotUTF8 = errors.New("content file is not valid UTF-8")
)

// Store reads files from the content root
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir
func NewStore(dir string) *Store {
	return &Store{root: filepath.Clean(dir)}
}

// Root returns the content root directory
func (s *Store) Root() string {
	return s.root
}

// Resolve maps a slash separated content name to a path below the root
func (s *Store) Resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "", ErrInvalidPath
	}

	// Prevent directory traversal
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	cleanName := path.Clean(name)
	if cleanName == "." || strings.HasPrefix(cleanName, "../") {
		return "", ErrInvalidPath
	}

	return filepath.Join(s.root, filepath.FromSlash(cleanName)), nil
}

// ReadFile returns the content of name. Directories and unreadable files
// report ErrNotFound alongside the underlying error.
func (s *Store) ReadFile(name string) ([]byte, error) {
	target, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}

	data, err := ReadBlob(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	return data, nil
}

// ReadText is ReadFile for files that must hold UTF-8 text
func (s *Store) ReadText(name string) ([]byte, error) {
	data, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotUTF8, name)
	}
	return data, nil
}

// ReadBlob reads data from a file and returns it as a byte slice
func ReadBlob(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// SaveBlob writes data to a file, creating parent directories as needed
func SaveBlob(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FileExists checks if a file or directory exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
