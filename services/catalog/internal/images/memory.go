package images

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage keeps images in a map. Used for dry runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	files   map[string][]byte
	baseURL string
}

// NewMemoryStorage creates an empty store whose URLs are baseURL/<name>.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		files:   make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put stores a copy of r's contents.
func (s *MemoryStorage) Put(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read image %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
	return nil
}

// Exists reports whether name was stored.
func (s *MemoryStorage) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[name]
	return ok, nil
}

// URL returns baseURL/name.
func (s *MemoryStorage) URL(name string) string {
	return s.baseURL + "/" + name
}

// Get returns the stored bytes of name.
func (s *MemoryStorage) Get(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	return data, ok
}

// Names returns the stored names in sorted order.
func (s *MemoryStorage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
