package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type menusStorage struct {
	pool *pgxpool.Pool
}

func newMenusStorage(pool *pgxpool.Pool) *menusStorage {
	return &menusStorage{pool: pool}
}

func (s *menusStorage) List(ctx context.Context, ownerUserID string) ([]storage.MenuTemplate, error) {
	query := `
		SELECT id, owner_user_id, name, plans, created_at, updated_at
		FROM menu_templates
		WHERE owner_user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu templates: %w", err)
	}
	defer rows.Close()

	menus := []storage.MenuTemplate{}
	for rows.Next() {
		var m storage.MenuTemplate
		if err := rows.Scan(&m.ID, &m.OwnerUserID, &m.Name, &m.Plans, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu template: %w", err)
		}
		menus = append(menus, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating menu templates: %w", rows.Err())
	}

	return menus, nil
}

func (s *menusStorage) Get(ctx context.Context, id uuid.UUID) (*storage.MenuTemplate, error) {
	query := `
		SELECT id, owner_user_id, name, plans, created_at, updated_at
		FROM menu_templates
		WHERE id = $1
	`

	var m storage.MenuTemplate
	err := s.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.OwnerUserID, &m.Name, &m.Plans, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (s *menusStorage) Create(ctx context.Context, m *storage.MenuTemplate) error {
	query := `
		INSERT INTO menu_templates (id, owner_user_id, name, plans)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query, m.ID, m.OwnerUserID, m.Name, m.Plans).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu template: %w", err)
	}
	return nil
}

func (s *menusStorage) Update(ctx context.Context, m *storage.MenuTemplate) error {
	query := `
		UPDATE menu_templates
		SET name = $2, plans = $3, updated_at = now()
		WHERE id = $1
		RETURNING owner_user_id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query, m.ID, m.Name, m.Plans).Scan(&m.OwnerUserID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

func (s *menusStorage) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM menu_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
