package memory

import (
	"github.com/fdg312/nutridesk/internal/storage"
)

// MemoryStorage is the in-memory storage.Storage used when no database is
// configured and in tests.
type MemoryStorage struct {
	catalog      *catalogStorage
	days         *dayEntriesStorage
	menus        *menusStorage
	goals        *goalsStorage
	measurements *measurementsStorage
	clients      *clientsStorage
	exports      *ExportsMemoryStorage
}

// New creates an empty MemoryStorage.
func New() *MemoryStorage {
	return &MemoryStorage{
		catalog:      newCatalogStorage(),
		days:         newDayEntriesStorage(),
		menus:        newMenusStorage(),
		goals:        newGoalsStorage(),
		measurements: newMeasurementsStorage(),
		clients:      newClientsStorage(),
		exports:      NewExportsMemoryStorage(),
	}
}

func (m *MemoryStorage) GetCatalogStorage() storage.CatalogStorage { return m.catalog }

func (m *MemoryStorage) GetDayEntriesStorage() storage.DayEntriesStorage { return m.days }

func (m *MemoryStorage) GetMenusStorage() storage.MenusStorage { return m.menus }

func (m *MemoryStorage) GetGoalsStorage() storage.GoalsStorage { return m.goals }

func (m *MemoryStorage) GetMeasurementsStorage() storage.MeasurementsStorage { return m.measurements }

func (m *MemoryStorage) GetClientsStorage() storage.ClientsStorage { return m.clients }

func (m *MemoryStorage) GetExportsStorage() storage.ExportsStorage { return m.exports }

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
