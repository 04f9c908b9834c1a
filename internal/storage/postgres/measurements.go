package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type measurementsStorage struct {
	pool *pgxpool.Pool
}

func newMeasurementsStorage(pool *pgxpool.Pool) *measurementsStorage {
	return &measurementsStorage{pool: pool}
}

const measurementColumns = `id, user_id, to_char(day, 'YYYY-MM-DD'), weight_kg, body_fat_pct, waist_cm, hips_cm, chest_cm, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row scanner) (storage.Measurement, error) {
	var m storage.Measurement
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Date,
		&m.WeightKg,
		&m.BodyFatPct,
		&m.WaistCm,
		&m.HipsCm,
		&m.ChestCm,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (s *measurementsStorage) List(ctx context.Context, userID string, from, to string) ([]storage.Measurement, error) {
	query := `
		SELECT ` + measurementColumns + `
		FROM body_measurements
		WHERE user_id = $1 AND day BETWEEN $2::date AND $3::date
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	result := []storage.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		result = append(result, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", rows.Err())
	}

	return result, nil
}

func (s *measurementsStorage) Upsert(ctx context.Context, m storage.Measurement) (*storage.Measurement, error) {
	query := `
		INSERT INTO body_measurements (id, user_id, day, weight_kg, body_fat_pct, waist_cm, hips_cm, chest_cm, notes)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, day)
		DO UPDATE SET
			weight_kg = EXCLUDED.weight_kg,
			body_fat_pct = EXCLUDED.body_fat_pct,
			waist_cm = EXCLUDED.waist_cm,
			hips_cm = EXCLUDED.hips_cm,
			chest_cm = EXCLUDED.chest_cm,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING ` + measurementColumns

	saved, err := scanMeasurement(s.pool.QueryRow(ctx, query,
		uuid.New(),
		m.UserID,
		m.Date,
		m.WeightKg,
		m.BodyFatPct,
		m.WaistCm,
		m.HipsCm,
		m.ChestCm,
		m.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert measurement: %w", err)
	}
	return &saved, nil
}

func (s *measurementsStorage) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM body_measurements WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
