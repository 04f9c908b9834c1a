package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dayEntriesStorage struct {
	pool *pgxpool.Pool
}

func newDayEntriesStorage(pool *pgxpool.Pool) *dayEntriesStorage {
	return &dayEntriesStorage{pool: pool}
}

func (s *dayEntriesStorage) List(ctx context.Context, userID string, from, to string) ([]storage.DayEntry, error) {
	query := `
		SELECT id, user_id, to_char(day, 'YYYY-MM-DD'), slot, payload, created_by, created_at
		FROM day_entries
		WHERE user_id = $1 AND day BETWEEN $2::date AND $3::date
		ORDER BY day ASC, created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list day entries: %w", err)
	}
	defer rows.Close()

	entries := []storage.DayEntry{}
	for rows.Next() {
		var e storage.DayEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Slot, &e.Payload, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan day entry: %w", err)
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating day entries: %w", rows.Err())
	}

	return entries, nil
}

func (s *dayEntriesStorage) Create(ctx context.Context, entry *storage.DayEntry) error {
	query := `
		INSERT INTO day_entries (id, user_id, day, slot, payload, created_by)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		RETURNING created_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query, entry.ID, entry.UserID, entry.Date, entry.Slot, entry.Payload, entry.CreatedBy).
		Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create day entry: %w", err)
	}
	return nil
}

func (s *dayEntriesStorage) Delete(ctx context.Context, userID string, id uuid.UUID) (*storage.DayEntry, error) {
	query := `
		DELETE FROM day_entries
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, to_char(day, 'YYYY-MM-DD'), slot, payload, created_by, created_at
	`

	var e storage.DayEntry
	err := s.pool.QueryRow(ctx, query, id, userID).
		Scan(&e.ID, &e.UserID, &e.Date, &e.Slot, &e.Payload, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}
