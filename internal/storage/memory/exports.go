package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

// ExportsMemoryStorage keeps export metadata and file bytes in memory.
type ExportsMemoryStorage struct {
	mu      sync.RWMutex
	exports map[uuid.UUID]*storage.Export
}

// NewExportsMemoryStorage creates an empty store.
func NewExportsMemoryStorage() *ExportsMemoryStorage {
	return &ExportsMemoryStorage{
		exports: make(map[uuid.UUID]*storage.Export),
	}
}

func (s *ExportsMemoryStorage) Create(ctx context.Context, e *storage.Export) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	s.exports[e.ID] = e
	return nil
}

func (s *ExportsMemoryStorage) Get(ctx context.Context, id uuid.UUID) (*storage.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.exports[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return e, nil
}

func (s *ExportsMemoryStorage) List(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []storage.Export
	for _, e := range s.exports {
		if e.OwnerUserID == ownerUserID {
			filtered = append(filtered, *e)
		}
	}

	// created_at DESC
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return paginate(filtered, limit, offset), nil
}

func (s *ExportsMemoryStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exports[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.exports, id)
	return nil
}
