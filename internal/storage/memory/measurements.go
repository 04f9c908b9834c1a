package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

type measurementsStorage struct {
	mu    sync.RWMutex
	rows  map[uuid.UUID]*storage.Measurement
	byKey map[string]uuid.UUID // key: "userID:date"
}

func newMeasurementsStorage() *measurementsStorage {
	return &measurementsStorage{
		rows:  make(map[uuid.UUID]*storage.Measurement),
		byKey: make(map[string]uuid.UUID),
	}
}

func (s *measurementsStorage) List(ctx context.Context, userID string, from, to string) ([]storage.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.Measurement{}
	for _, m := range s.rows {
		if m.UserID == userID && m.Date >= from && m.Date <= to {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (s *measurementsStorage) Upsert(ctx context.Context, m storage.Measurement) (*storage.Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := m.UserID + ":" + m.Date

	if id, ok := s.byKey[key]; ok {
		existing := s.rows[id]
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
	} else {
		m.ID = uuid.New()
		m.CreatedAt = now
		s.byKey[key] = m.ID
	}
	m.UpdatedAt = now

	stored := m
	s.rows[m.ID] = &stored
	return &m, nil
}

func (s *measurementsStorage) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.rows[id]
	if !ok || m.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.byKey, m.UserID+":"+m.Date)
	delete(s.rows, id)
	return nil
}
