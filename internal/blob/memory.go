package blob

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in process memory. Used in local mode; contents
// are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	s.objects[key] = copied
	return int64(len(data)), nil
}

func (s *MemoryStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

// PresignGet returns "" so downloads are streamed by the API.
func (s *MemoryStore) PresignGet(ctx context.Context, key string, ttlSeconds int) (string, error) {
	return "", nil
}

func (s *MemoryStore) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}
