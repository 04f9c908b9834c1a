package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
)

type clientsStorage struct {
	mu          sync.RWMutex
	assignments map[string]*storage.ClientAssignment // key: "nutritionistID:clientID"
}

func newClientsStorage() *clientsStorage {
	return &clientsStorage{
		assignments: make(map[string]*storage.ClientAssignment),
	}
}

func assignmentKey(nutritionistID, clientID string) string {
	return nutritionistID + ":" + clientID
}

func (s *clientsStorage) List(ctx context.Context, nutritionistID string) ([]storage.ClientAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []storage.ClientAssignment{}
	for _, a := range s.assignments {
		if a.NutritionistID == nutritionistID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClientID < result[j].ClientID })
	return result, nil
}

func (s *clientsStorage) Assign(ctx context.Context, nutritionistID, clientID, note string) (*storage.ClientAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey(nutritionistID, clientID)
	a, ok := s.assignments[key]
	if !ok {
		a = &storage.ClientAssignment{
			NutritionistID: nutritionistID,
			ClientID:       clientID,
			CreatedAt:      time.Now().UTC(),
		}
		s.assignments[key] = a
	}
	a.Note = note

	copied := *a
	return &copied, nil
}

func (s *clientsStorage) Unassign(ctx context.Context, nutritionistID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey(nutritionistID, clientID)
	if _, ok := s.assignments[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.assignments, key)
	return nil
}

func (s *clientsStorage) IsAssigned(ctx context.Context, nutritionistID, clientID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.assignments[assignmentKey(nutritionistID, clientID)]
	return ok, nil
}
