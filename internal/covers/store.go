package covers

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/natefinch/atomic"
)

var validKey = regexp.MustCompile(`^cover_[0-9A-Za-z-]+_[0-9a-f]{16}$`)

// Store keeps cover images as files outside the database, one file per
// book and content version.
type Store struct {
	dir string
}

// NewStore creates a cover store at the specified directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put writes data for the book and returns the key to read it back with.
// The key depends on the content, so writing the same cover twice is a no-op.
func (s *Store) Put(bookID string, data []byte) (string, error) {
	key := coverKey(bookID, data)
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid book id %q for cover key", bookID)
	}

	path := filepath.Join(s.dir, key)
	if _, err := os.Stat(path); err == nil {
		return key, nil
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write cover %s: %w", key, err)
	}
	return key, nil
}

func (s *Store) Get(key string) ([]byte, error) {
	if !validKey.MatchString(key) {
		return nil, fmt.Errorf("invalid cover key %q", key)
	}
	return os.ReadFile(filepath.Join(s.dir, key))
}

// Delete removes a cover file. Missing files are not an error.
func (s *Store) Delete(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid cover key %q", key)
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Dir returns the covers directory path.
func (s *Store) Dir() string {
	return s.dir
}

func coverKey(bookID string, data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("cover_%s_%x", bookID, hash[:8])
}
