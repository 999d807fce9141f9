package memory

import (
	"context"
	"sync"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu     sync.RWMutex
	values map[storage.Key][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		values: make(map[storage.Key][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context, key storage.Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, model.ErrKeyNotFound
	}
	// Callers may mutate the returned slice
	return append([]byte(nil), value...), nil
}

func (s *Storage) Set(ctx context.Context, key storage.Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Storage) Remove(ctx context.Context, key storage.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len returns the number of stored keys
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Stats reports the key count and the total value size in bytes
func (s *Storage) Stats(_ context.Context) (keys int, bytes int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.values {
		bytes += int64(len(v))
	}
	return len(s.values), bytes, nil
}
