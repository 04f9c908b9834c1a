package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
)

type catalogStorage struct {
	mu     sync.RWMutex
	items  map[int64]*storage.CatalogItemRow
	nextID int64
}

func newCatalogStorage() *catalogStorage {
	return &catalogStorage{
		items:  make(map[int64]*storage.CatalogItemRow),
		nextID: 1,
	}
}

func (s *catalogStorage) Search(ctx context.Context, q storage.CatalogQuery) ([]storage.CatalogItemRow, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text := strings.ToLower(strings.TrimSpace(q.Text))
	var matched []storage.CatalogItemRow
	for _, it := range s.items {
		if q.Kind != "" && it.Kind != q.Kind {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(it.Name), text) {
			continue
		}
		matched = append(matched, *it)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID < matched[j].ID
	})

	return paginate(matched, q.Limit, q.Offset), len(matched), nil
}

func (s *catalogStorage) Get(ctx context.Context, id int64) (*storage.CatalogItemRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *it
	return &copied, nil
}

func (s *catalogStorage) Create(ctx context.Context, row *storage.CatalogItemRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.ID == 0 {
		row.ID = s.nextID
	}
	if row.ID >= s.nextID {
		s.nextID = row.ID + 1
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now

	copied := *row
	s.items[row.ID] = &copied
	return nil
}

func (s *catalogStorage) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
