package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

type dayEntriesStorage struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*storage.DayEntry
	// seq is the insertion order within a day.
	seq  map[uuid.UUID]int64
	next int64
}

func newDayEntriesStorage() *dayEntriesStorage {
	return &dayEntriesStorage{
		entries: make(map[uuid.UUID]*storage.DayEntry),
		seq:     make(map[uuid.UUID]int64),
	}
}

func (s *dayEntriesStorage) List(ctx context.Context, userID string, from, to string) ([]storage.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.DayEntry{}
	for _, e := range s.entries {
		if e.UserID == userID && e.Date >= from && e.Date <= to {
			result = append(result, *e)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return s.seq[result[i].ID] < s.seq[result[j].ID]
	})
	return result, nil
}

func (s *dayEntriesStorage) Create(ctx context.Context, entry *storage.DayEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now().UTC()

	copied := *entry
	s.entries[entry.ID] = &copied
	s.next++
	s.seq[entry.ID] = s.next
	return nil
}

func (s *dayEntriesStorage) Delete(ctx context.Context, userID string, id uuid.UUID) (*storage.DayEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return nil, storage.ErrNotFound
	}
	delete(s.entries, id)
	delete(s.seq, id)
	return e, nil
}
