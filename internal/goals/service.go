package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
)

var ErrValidation = errors.New("invalid_request")

// Service handles goals business logic. Callers resolve access first.
type Service struct {
	storage storage.GoalsStorage
}

// NewService creates a new goals service.
func NewService(storage storage.GoalsStorage) *Service {
	return &Service{storage: storage}
}

// GetOrDefault returns the user's goals, or defaults when none are set.
func (s *Service) GetOrDefault(ctx context.Context, userID string) (GoalsDTO, bool, error) {
	goal, err := s.storage.Get(ctx, userID)
	if err != nil {
		return GoalsDTO{}, false, fmt.Errorf("failed to get goals: %w", err)
	}
	if goal == nil {
		return DefaultGoals(userID), true, nil
	}
	return toDTO(goal), false, nil
}

// Upsert creates or updates the goals of userID.
func (s *Service) Upsert(ctx context.Context, userID, updatedBy string, req UpsertGoalsRequest) (GoalsDTO, error) {
	if err := req.Validate(); err != nil {
		return GoalsDTO{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	goal, err := s.storage.Upsert(ctx, userID, storage.GoalUpsert{
		TotalCalories:        req.TotalCalories,
		ProteinsInGrams:      req.ProteinsInGrams,
		CarbohydratesInGrams: req.CarbohydratesInGrams,
		FatInGrams:           req.FatInGrams,
		WaterMl:              req.WaterMl,
		UpdatedBy:            updatedBy,
	})
	if err != nil {
		return GoalsDTO{}, fmt.Errorf("failed to upsert goals: %w", err)
	}
	return toDTO(goal), nil
}

func toDTO(g *storage.Goal) GoalsDTO {
	return GoalsDTO{
		UserID:               g.UserID,
		TotalCalories:        g.TotalCalories,
		ProteinsInGrams:      g.ProteinsInGrams,
		CarbohydratesInGrams: g.CarbohydratesInGrams,
		FatInGrams:           g.FatInGrams,
		WaterMl:              g.WaterMl,
		UpdatedBy:            g.UpdatedBy,
		CreatedAt:            g.CreatedAt,
		UpdatedAt:            g.UpdatedAt,
	}
}
