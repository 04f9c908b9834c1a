package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

type clientsStorage struct {
	pool *pgxpool.Pool
}

func newClientsStorage(pool *pgxpool.Pool) *clientsStorage {
	return &clientsStorage{pool: pool}
}

func (s *clientsStorage) List(ctx context.Context, nutritionistID string) ([]storage.ClientAssignment, error) {
	query := `
		SELECT nutritionist_id, client_id, note, created_at
		FROM client_assignments
		WHERE nutritionist_id = $1
		ORDER BY client_id ASC
	`

	rows, err := s.pool.Query(ctx, query, nutritionistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	result := []storage.ClientAssignment{}
	for rows.Next() {
		var a storage.ClientAssignment
		if err := rows.Scan(&a.NutritionistID, &a.ClientID, &a.Note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client assignment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *clientsStorage) Assign(ctx context.Context, nutritionistID, clientID, note string) (*storage.ClientAssignment, error) {
	query := `
		INSERT INTO client_assignments (nutritionist_id, client_id, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (nutritionist_id, client_id)
		DO UPDATE SET note = EXCLUDED.note
		RETURNING nutritionist_id, client_id, note, created_at
	`

	var a storage.ClientAssignment
	err := s.pool.QueryRow(ctx, query, nutritionistID, clientID, note).
		Scan(&a.NutritionistID, &a.ClientID, &a.Note, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to assign client: %w", err)
	}
	return &a, nil
}

func (s *clientsStorage) Unassign(ctx context.Context, nutritionistID, clientID string) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM client_assignments WHERE nutritionist_id = $1 AND client_id = $2`,
		nutritionistID, clientID)
	if err != nil {
		return fmt.Errorf("failed to unassign client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *clientsStorage) IsAssigned(ctx context.Context, nutritionistID, clientID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM client_assignments WHERE nutritionist_id = $1 AND client_id = $2)`,
		nutritionistID, clientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check client assignment: %w", err)
	}
	return exists, nil
}
