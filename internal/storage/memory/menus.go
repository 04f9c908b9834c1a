package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

type menusStorage struct {
	mu    sync.RWMutex
	menus map[uuid.UUID]*storage.MenuTemplate
}

func newMenusStorage() *menusStorage {
	return &menusStorage{
		menus: make(map[uuid.UUID]*storage.MenuTemplate),
	}
}

func (s *menusStorage) List(ctx context.Context, ownerUserID string) ([]storage.MenuTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.MenuTemplate{}
	for _, m := range s.menus {
		if m.OwnerUserID == ownerUserID {
			result = append(result, *m)
		}
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (s *menusStorage) Get(ctx context.Context, id uuid.UUID) (*storage.MenuTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.menus[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *menusStorage) Create(ctx context.Context, m *storage.MenuTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	copied := *m
	s.menus[m.ID] = &copied
	return nil
}

func (s *menusStorage) Update(ctx context.Context, m *storage.MenuTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.menus[m.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Name = m.Name
	existing.Plans = m.Plans
	existing.UpdatedAt = time.Now().UTC()

	*m = *existing
	return nil
}

func (s *menusStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menus[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.menus, id)
	return nil
}
