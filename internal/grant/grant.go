// Package grant persists small pieces of consent state: the media-library
// permission and the status-folder directory grant.
package grant

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoGrant is returned by Get when nothing has been stored.
var ErrNoGrant = errors.New("no grant stored")

// Store holds a single opaque grant value.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

// FileStore keeps the grant in a single small file.
// Reads and writes are not locked against other processes.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoGrant
	}
	if err != nil {
		return "", fmt.Errorf("read grant %s: %w", s.path, err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", ErrNoGrant
	}
	return value, nil
}

func (s *FileStore) Set(ctx context.Context, value string) error {
	if value == "" {
		return errors.New("grant value is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create grant dir: %w", err)
	}

	// Sibling temp file, then rename over the old value.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".grant-*")
	if err != nil {
		return fmt.Errorf("create grant temp: %w", err)
	}
	if _, err := tmp.WriteString(value + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write grant: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close grant: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store grant: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear grant: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	value string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.value == "" {
		return "", ErrNoGrant
	}
	return s.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, value string) error {
	if value == "" {
		return errors.New("grant value is empty")
	}
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.value = ""
	s.mu.Unlock()
	return nil
}
