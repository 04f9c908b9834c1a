package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresExportsStorage stores export metadata. File bytes live in the
// blob store.
type PostgresExportsStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresExportsStorage creates the store.
func NewPostgresExportsStorage(pool *pgxpool.Pool) *PostgresExportsStorage {
	return &PostgresExportsStorage{pool: pool}
}

const exportColumns = `id, owner_user_id, subject_id, kind, format, from_date, to_date, object_key, size_bytes, status, error, created_at, updated_at`

func (s *PostgresExportsStorage) Create(ctx context.Context, e *storage.Export) error {
	query := `
		INSERT INTO exports (id, owner_user_id, subject_id, kind, format, from_date, to_date, object_key, size_bytes, status, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		e.ID,
		e.OwnerUserID,
		e.SubjectID,
		e.Kind,
		e.Format,
		e.FromDate,
		e.ToDate,
		e.ObjectKey,
		e.SizeBytes,
		e.Status,
		e.Error,
	).Scan(&e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

func (s *PostgresExportsStorage) Get(ctx context.Context, id uuid.UUID) (*storage.Export, error) {
	query := `SELECT ` + exportColumns + ` FROM exports WHERE id = $1`

	var e storage.Export
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.OwnerUserID,
		&e.SubjectID,
		&e.Kind,
		&e.Format,
		&e.FromDate,
		&e.ToDate,
		&e.ObjectKey,
		&e.SizeBytes,
		&e.Status,
		&e.Error,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return &e, nil
}

func (s *PostgresExportsStorage) List(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.Export, error) {
	query := `
		SELECT ` + exportColumns + `
		FROM exports
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	exports := []storage.Export{}
	for rows.Next() {
		var e storage.Export
		err := rows.Scan(
			&e.ID,
			&e.OwnerUserID,
			&e.SubjectID,
			&e.Kind,
			&e.Format,
			&e.FromDate,
			&e.ToDate,
			&e.ObjectKey,
			&e.SizeBytes,
			&e.Status,
			&e.Error,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, e)
	}

	return exports, rows.Err()
}

func (s *PostgresExportsStorage) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM exports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}
