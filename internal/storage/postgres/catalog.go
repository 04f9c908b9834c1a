package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogStorage struct {
	pool *pgxpool.Pool
}

func newCatalogStorage(pool *pgxpool.Pool) *catalogStorage {
	return &catalogStorage{pool: pool}
}

func (s *catalogStorage) Search(ctx context.Context, q storage.CatalogQuery) ([]storage.CatalogItemRow, int, error) {
	where := `
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR kind = $2)
	`

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM catalog_items`+where, q.Text, q.Kind).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count catalog items: %w", err)
	}

	query := `
		SELECT id, name, kind, payload, created_by, created_at, updated_at
		FROM catalog_items` + where + `
		ORDER BY name ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := s.pool.Query(ctx, query, q.Text, q.Kind, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer rows.Close()

	items := []storage.CatalogItemRow{}
	for rows.Next() {
		var it storage.CatalogItemRow
		if err := rows.Scan(&it.ID, &it.Name, &it.Kind, &it.Payload, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, it)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("error iterating catalog items: %w", rows.Err())
	}

	return items, total, nil
}

func (s *catalogStorage) Get(ctx context.Context, id int64) (*storage.CatalogItemRow, error) {
	query := `
		SELECT id, name, kind, payload, created_by, created_at, updated_at
		FROM catalog_items
		WHERE id = $1
	`

	var it storage.CatalogItemRow
	err := s.pool.QueryRow(ctx, query, id).Scan(&it.ID, &it.Name, &it.Kind, &it.Payload, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &it, nil
}

func (s *catalogStorage) Create(ctx context.Context, row *storage.CatalogItemRow) error {
	query := `
		INSERT INTO catalog_items (name, kind, payload, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := s.pool.QueryRow(ctx, query, row.Name, row.Kind, row.Payload, row.CreatedBy).
		Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create catalog item: %w", err)
	}
	return nil
}

func (s *catalogStorage) Delete(ctx context.Context, id int64) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM catalog_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
