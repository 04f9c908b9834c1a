package goals

import (
	"fmt"
	"time"
)

// GoalsDTO is a user's daily nutrition goal.
type GoalsDTO struct {
	UserID               string    `json:"userId"`
	TotalCalories        int       `json:"totalCalories"`
	ProteinsInGrams      int       `json:"proteinsInGrams"`
	CarbohydratesInGrams int       `json:"carbohydratesInGrams"`
	FatInGrams           int       `json:"fatInGrams"`
	WaterMl              int       `json:"waterMl"`
	UpdatedBy            string    `json:"updatedBy,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// GetGoalsResponse contains goals and a flag indicating if they are defaults.
type GetGoalsResponse struct {
	Goals     GoalsDTO `json:"goals"`
	IsDefault bool     `json:"isDefault"`
}

// UpsertGoalsRequest is the request body for PUT /v1/goals.
type UpsertGoalsRequest struct {
	UserID               string `json:"userId,omitempty"`
	TotalCalories        int    `json:"totalCalories"`
	ProteinsInGrams      int    `json:"proteinsInGrams"`
	CarbohydratesInGrams int    `json:"carbohydratesInGrams"`
	FatInGrams           int    `json:"fatInGrams"`
	WaterMl              int    `json:"waterMl"`
}

// Validate validates the upsert request.
func (r *UpsertGoalsRequest) Validate() error {
	if r.TotalCalories < 800 || r.TotalCalories > 6000 {
		return fmt.Errorf("totalCalories must be between 800 and 6000")
	}

	if r.ProteinsInGrams < 0 || r.ProteinsInGrams > 400 {
		return fmt.Errorf("proteinsInGrams must be between 0 and 400")
	}

	if r.CarbohydratesInGrams < 0 || r.CarbohydratesInGrams > 800 {
		return fmt.Errorf("carbohydratesInGrams must be between 0 and 800")
	}

	if r.FatInGrams < 0 || r.FatInGrams > 400 {
		return fmt.Errorf("fatInGrams must be between 0 and 400")
	}

	if r.WaterMl < 0 || r.WaterMl > 10000 {
		return fmt.Errorf("waterMl must be between 0 and 10000")
	}

	return nil
}

// DefaultGoals returns the goals used until a user has their own.
func DefaultGoals(userID string) GoalsDTO {
	now := time.Now().UTC()
	return GoalsDTO{
		UserID:               userID,
		TotalCalories:        2000,
		ProteinsInGrams:      100,
		CarbohydratesInGrams: 250,
		FatInGrams:           70,
		WaterMl:              2000,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
