package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type goalsStorage struct {
	pool *pgxpool.Pool
}

func newGoalsStorage(pool *pgxpool.Pool) *goalsStorage {
	return &goalsStorage{pool: pool}
}

func (s *goalsStorage) Get(ctx context.Context, userID string) (*storage.Goal, error) {
	query := `
		SELECT user_id, total_calories, proteins_g, carbohydrates_g, fat_g, water_ml, updated_by, created_at, updated_at
		FROM nutrition_goals
		WHERE user_id = $1
	`

	var g storage.Goal
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&g.UserID,
		&g.TotalCalories,
		&g.ProteinsInGrams,
		&g.CarbohydratesInGrams,
		&g.FatInGrams,
		&g.WaterMl,
		&g.UpdatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nutrition goals: %w", err)
	}

	return &g, nil
}

func (s *goalsStorage) Upsert(ctx context.Context, userID string, upsert storage.GoalUpsert) (*storage.Goal, error) {
	query := `
		INSERT INTO nutrition_goals (user_id, total_calories, proteins_g, carbohydrates_g, fat_g, water_ml, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET
			total_calories = EXCLUDED.total_calories,
			proteins_g = EXCLUDED.proteins_g,
			carbohydrates_g = EXCLUDED.carbohydrates_g,
			fat_g = EXCLUDED.fat_g,
			water_ml = EXCLUDED.water_ml,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		RETURNING user_id, total_calories, proteins_g, carbohydrates_g, fat_g, water_ml, updated_by, created_at, updated_at
	`

	var g storage.Goal
	err := s.pool.QueryRow(
		ctx,
		query,
		userID,
		upsert.TotalCalories,
		upsert.ProteinsInGrams,
		upsert.CarbohydratesInGrams,
		upsert.FatInGrams,
		upsert.WaterMl,
		upsert.UpdatedBy,
	).Scan(
		&g.UserID,
		&g.TotalCalories,
		&g.ProteinsInGrams,
		&g.CarbohydratesInGrams,
		&g.FatInGrams,
		&g.WaterMl,
		&g.UpdatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert nutrition goals: %w", err)
	}

	return &g, nil
}
