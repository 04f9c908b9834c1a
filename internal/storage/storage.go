package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get/Delete methods when the row does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the root of every backend. Sub-stores share one connection pool
// (Postgres) or one process (memory).
type Storage interface {
	GetCatalogStorage() CatalogStorage
	GetDayEntriesStorage() DayEntriesStorage
	GetMenusStorage() MenusStorage
	GetGoalsStorage() GoalsStorage
	GetMeasurementsStorage() MeasurementsStorage
	GetClientsStorage() ClientsStorage
	GetExportsStorage() ExportsStorage

	// Close releases the pool (Postgres). No-op for memory.
	Close() error
}

// CatalogStorage holds the food/recipe catalog.
type CatalogStorage interface {
	// Search returns items matching the query and the total match count.
	Search(ctx context.Context, q CatalogQuery) ([]CatalogItemRow, int, error)
	Get(ctx context.Context, id int64) (*CatalogItemRow, error)
	Create(ctx context.Context, row *CatalogItemRow) error
	Delete(ctx context.Context, id int64) error
}

// CatalogQuery filters a catalog search. Empty fields match everything.
type CatalogQuery struct {
	Text   string
	Kind   string // "food" or "recipe"
	Limit  int
	Offset int
}

// CatalogItemRow is a catalog item. Payload is the item JSON as the
// catalog serves it.
type CatalogItemRow struct {
	ID        int64
	Name      string
	Kind      string
	Payload   []byte
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DayEntriesStorage holds daily log entries.
type DayEntriesStorage interface {
	// List returns entries for dates in [from, to] (YYYY-MM-DD), ordered by
	// date then creation time.
	List(ctx context.Context, userID string, from, to string) ([]DayEntry, error)
	Create(ctx context.Context, entry *DayEntry) error
	// Delete removes an entry of userID. Returns ErrNotFound otherwise.
	Delete(ctx context.Context, userID string, id uuid.UUID) (*DayEntry, error)
}

// DayEntry is one logged item. Payload is the applied item JSON.
type DayEntry struct {
	ID        uuid.UUID
	UserID    string
	Date      string // YYYY-MM-DD
	Slot      string // breakfast, lunch, dinner, snack, exercise, water
	Payload   []byte
	CreatedBy string
	CreatedAt time.Time
}

// MenusStorage holds menu templates.
type MenusStorage interface {
	List(ctx context.Context, ownerUserID string) ([]MenuTemplate, error)
	Get(ctx context.Context, id uuid.UUID) (*MenuTemplate, error)
	Create(ctx context.Context, m *MenuTemplate) error
	Update(ctx context.Context, m *MenuTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MenuTemplate is a named menu. Plans is the four-slot JSON with every item
// already pinned to its original serving.
type MenuTemplate struct {
	ID          uuid.UUID
	OwnerUserID string
	Name        string
	Plans       []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GoalsStorage holds per-user nutrition goals.
type GoalsStorage interface {
	// Get returns nil, nil when the user has no goals yet.
	Get(ctx context.Context, userID string) (*Goal, error)
	Upsert(ctx context.Context, userID string, upsert GoalUpsert) (*Goal, error)
}

// Goal is a user's daily target.
type Goal struct {
	UserID               string
	TotalCalories        int
	ProteinsInGrams      int
	CarbohydratesInGrams int
	FatInGrams           int
	WaterMl              int
	UpdatedBy            string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// GoalUpsert is used for creating/updating goals.
type GoalUpsert struct {
	TotalCalories        int
	ProteinsInGrams      int
	CarbohydratesInGrams int
	FatInGrams           int
	WaterMl              int
	UpdatedBy            string
}

// MeasurementsStorage holds body measurements, one row per user and day.
type MeasurementsStorage interface {
	List(ctx context.Context, userID string, from, to string) ([]Measurement, error)
	Upsert(ctx context.Context, m Measurement) (*Measurement, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// Measurement is a body measurement. Optional metrics are nil when unset.
type Measurement struct {
	ID         uuid.UUID
	UserID     string
	Date       string
	WeightKg   float64
	BodyFatPct *float64
	WaistCm    *float64
	HipsCm     *float64
	ChestCm    *float64
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ClientsStorage holds nutritionist to client assignments.
type ClientsStorage interface {
	List(ctx context.Context, nutritionistID string) ([]ClientAssignment, error)
	Assign(ctx context.Context, nutritionistID, clientID, note string) (*ClientAssignment, error)
	Unassign(ctx context.Context, nutritionistID, clientID string) error
	IsAssigned(ctx context.Context, nutritionistID, clientID string) (bool, error)
}

// ClientAssignment links a nutritionist to a client.
type ClientAssignment struct {
	NutritionistID string
	ClientID       string
	Note           string
	CreatedAt      time.Time
}

// ExportsStorage holds generated export metadata.
type ExportsStorage interface {
	Create(ctx context.Context, e *Export) error
	Get(ctx context.Context, id uuid.UUID) (*Export, error)
	// List returns exports of the owner, newest first.
	List(ctx context.Context, ownerUserID string, limit, offset int) ([]Export, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Export is the metadata of a rendered menu or journal file.
type Export struct {
	ID          uuid.UUID
	OwnerUserID string
	SubjectID   string // menu id or client user id
	Kind        string // "menu" or "journal"
	Format      string // "pdf" or "csv"
	FromDate    string
	ToDate      string
	ObjectKey   *string // blob key, nil when rendering failed
	SizeBytes   int64
	Status      string // "ready" or "failed"
	Error       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
