package postgres

import (
	"context"
	"errors"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the pgx-backed storage.Storage.
type PostgresStorage struct {
	pool         *pgxpool.Pool
	catalog      *catalogStorage
	days         *dayEntriesStorage
	menus        *menusStorage
	goals        *goalsStorage
	measurements *measurementsStorage
	clients      *clientsStorage
	exports      *PostgresExportsStorage
}

// New connects to databaseURL and verifies the connection.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:         pool,
		catalog:      newCatalogStorage(pool),
		days:         newDayEntriesStorage(pool),
		menus:        newMenusStorage(pool),
		goals:        newGoalsStorage(pool),
		measurements: newMeasurementsStorage(pool),
		clients:      newClientsStorage(pool),
		exports:      NewPostgresExportsStorage(pool),
	}, nil
}

func (p *PostgresStorage) GetCatalogStorage() storage.CatalogStorage { return p.catalog }

func (p *PostgresStorage) GetDayEntriesStorage() storage.DayEntriesStorage { return p.days }

func (p *PostgresStorage) GetMenusStorage() storage.MenusStorage { return p.menus }

func (p *PostgresStorage) GetGoalsStorage() storage.GoalsStorage { return p.goals }

func (p *PostgresStorage) GetMeasurementsStorage() storage.MeasurementsStorage { return p.measurements }

func (p *PostgresStorage) GetClientsStorage() storage.ClientsStorage { return p.clients }

func (p *PostgresStorage) GetExportsStorage() storage.ExportsStorage { return p.exports }

// Pool exposes the pool for health checks.
func (p *PostgresStorage) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// notFound maps pgx.ErrNoRows to storage.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
