package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fdg312/nutridesk/internal/storage"
)

type goalsStorage struct {
	mu    sync.RWMutex
	goals map[string]*storage.Goal // key: user id
}

func newGoalsStorage() *goalsStorage {
	return &goalsStorage{
		goals: make(map[string]*storage.Goal),
	}
}

func (s *goalsStorage) Get(ctx context.Context, userID string) (*storage.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goal, ok := s.goals[userID]
	if !ok {
		return nil, nil // not found, return nil without error
	}

	copied := *goal
	return &copied, nil
}

func (s *goalsStorage) Upsert(ctx context.Context, userID string, upsert storage.GoalUpsert) (*storage.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	goal, ok := s.goals[userID]
	if !ok {
		goal = &storage.Goal{UserID: userID, CreatedAt: now}
		s.goals[userID] = goal
	}
	goal.TotalCalories = upsert.TotalCalories
	goal.ProteinsInGrams = upsert.ProteinsInGrams
	goal.CarbohydratesInGrams = upsert.CarbohydratesInGrams
	goal.FatInGrams = upsert.FatInGrams
	goal.WaterMl = upsert.WaterMl
	goal.UpdatedBy = upsert.UpdatedBy
	goal.UpdatedAt = now

	copied := *goal
	return &copied, nil
}
