package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore implements Store with an in-memory map persisted to a JSON file
// after every write. An empty path keeps everything in memory.
type FileStore struct {
	data  map[string][]byte
	path  string
	mutex sync.RWMutex
}

// OpenFile loads a FileStore from path, creating it on first write
func OpenFile(path string) (*FileStore, error) {
	store := &FileStore{
		data: make(map[string][]byte),
		path: path,
	}
	if path == "" {
		return store, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}

	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse journal file: %w", err)
	}
	for k, v := range stored {
		store.data[k] = []byte(v)
	}
	return store, nil
}

// Put implements Store
func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return s.persist()
}

// Get implements Store
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Delete implements Store
func (s *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return s.persist()
}

// Keys implements Store
func (s *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store
func (s *FileStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.persist()
}

// persist writes the map to disk. Must be called with the lock held.
func (s *FileStore) persist() error {
	if s.path == "" {
		return nil
	}

	stringData := make(map[string]string, len(s.data))
	for k, v := range s.data {
		stringData[k] = string(v)
	}

	raw, err := json.MarshalIndent(stringData, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
