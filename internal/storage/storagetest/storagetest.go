// Package storagetest checks a storage.Storage implementation against the
// behaviour the services rely on. Both backends run the same suite.
package storagetest

import (
	"context"
	"testing"

	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises every sub-store of s. The store must start empty.
func Run(t *testing.T, s storage.Storage) {
	t.Run("Catalog", func(t *testing.T) { catalog(t, s.GetCatalogStorage()) })
	t.Run("DayEntries", func(t *testing.T) { dayEntries(t, s.GetDayEntriesStorage()) })
	t.Run("Menus", func(t *testing.T) { menus(t, s.GetMenusStorage()) })
	t.Run("Goals", func(t *testing.T) { goals(t, s.GetGoalsStorage()) })
	t.Run("Measurements", func(t *testing.T) { measurements(t, s.GetMeasurementsStorage()) })
	t.Run("Clients", func(t *testing.T) { clients(t, s.GetClientsStorage()) })
	t.Run("Exports", func(t *testing.T) { exports(t, s.GetExportsStorage()) })
}

func catalog(t *testing.T, c storage.CatalogStorage) {
	ctx := context.Background()

	oats := &storage.CatalogItemRow{Name: "Oats", Kind: "food", Payload: []byte(`{"name":"Oats","totalCalories":380}`), CreatedBy: "nutri-1"}
	stew := &storage.CatalogItemRow{Name: "Beef stew", Kind: "recipe", Payload: []byte(`{"name":"Beef stew","itemType":"RECIPE"}`)}
	require.NoError(t, c.Create(ctx, oats))
	require.NoError(t, c.Create(ctx, stew))
	assert.NotZero(t, oats.ID)
	assert.NotEqual(t, oats.ID, stew.ID)

	got, err := c.Get(ctx, oats.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oats", got.Name)
	assert.JSONEq(t, string(oats.Payload), string(got.Payload))

	items, total, err := c.Search(ctx, storage.CatalogQuery{Text: "oat", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, oats.ID, items[0].ID)

	_, total, err = c.Search(ctx, storage.CatalogQuery{Kind: "recipe", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	require.NoError(t, c.Delete(ctx, stew.ID))
	assert.ErrorIs(t, c.Delete(ctx, stew.ID), storage.ErrNotFound)
	_, err = c.Get(ctx, stew.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func dayEntries(t *testing.T, d storage.DayEntriesStorage) {
	ctx := context.Background()

	first := &storage.DayEntry{UserID: "client-1", Date: "2024-05-01", Slot: "breakfast", Payload: []byte(`{"quantity":200}`)}
	second := &storage.DayEntry{UserID: "client-1", Date: "2024-05-01", Slot: "water", Payload: []byte(`{"quantity":500,"unit":"ml"}`)}
	other := &storage.DayEntry{UserID: "client-1", Date: "2024-05-03", Slot: "lunch", Payload: []byte(`{}`)}
	for _, e := range []*storage.DayEntry{first, second, other} {
		require.NoError(t, d.Create(ctx, e))
	}

	day, err := d.List(ctx, "client-1", "2024-05-01", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, first.ID, day[0].ID, "entries are ordered by creation time")
	assert.Equal(t, "2024-05-01", day[0].Date)

	week, err := d.List(ctx, "client-1", "2024-05-01", "2024-05-07")
	require.NoError(t, err)
	assert.Len(t, week, 3)

	_, err = d.Delete(ctx, "client-2", first.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "entries of other users are not deleted")

	deleted, err := d.Delete(ctx, "client-1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", deleted.Date)
}

func menus(t *testing.T, m storage.MenusStorage) {
	ctx := context.Background()

	menu := &storage.MenuTemplate{ID: uuid.New(), OwnerUserID: "nutri-1", Name: "Cutting", Plans: []byte(`{"breakfastPlan":[]}`)}
	require.NoError(t, m.Create(ctx, menu))

	menu.Name = "Cutting week"
	require.NoError(t, m.Update(ctx, menu))

	got, err := m.Get(ctx, menu.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cutting week", got.Name)

	list, err := m.List(ctx, "nutri-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = m.List(ctx, "nutri-2")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, m.Delete(ctx, menu.ID))
	_, err = m.Get(ctx, menu.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func goals(t *testing.T, g storage.GoalsStorage) {
	ctx := context.Background()

	got, err := g.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = g.Upsert(ctx, "client-1", storage.GoalUpsert{TotalCalories: 1800, ProteinsInGrams: 120, WaterMl: 2000, UpdatedBy: "nutri-1"})
	require.NoError(t, err)
	saved, err := g.Upsert(ctx, "client-1", storage.GoalUpsert{TotalCalories: 1900, ProteinsInGrams: 120, WaterMl: 2000, UpdatedBy: "client-1"})
	require.NoError(t, err)
	assert.Equal(t, 1900, saved.TotalCalories)
	assert.Equal(t, "client-1", saved.UpdatedBy)
}

func measurements(t *testing.T, m storage.MeasurementsStorage) {
	ctx := context.Background()

	waist := 80.0
	first, err := m.Upsert(ctx, storage.Measurement{UserID: "client-1", Date: "2024-05-01", WeightKg: 82.5, WaistCm: &waist})
	require.NoError(t, err)
	_, err = m.Upsert(ctx, storage.Measurement{UserID: "client-1", Date: "2024-05-01", WeightKg: 82.0})
	require.NoError(t, err)

	list, err := m.List(ctx, "client-1", "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, list, 1, "one row per user and day")
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, 82.0, list[0].WeightKg)
	assert.Nil(t, list[0].WaistCm)

	assert.ErrorIs(t, m.Delete(ctx, "client-2", list[0].ID), storage.ErrNotFound)
	require.NoError(t, m.Delete(ctx, "client-1", list[0].ID))
}

func clients(t *testing.T, c storage.ClientsStorage) {
	ctx := context.Background()

	_, err := c.Assign(ctx, "nutri-1", "client-1", "")
	require.NoError(t, err)
	a, err := c.Assign(ctx, "nutri-1", "client-1", "weekly check-in")
	require.NoError(t, err)
	assert.Equal(t, "weekly check-in", a.Note)

	ok, err := c.IsAssigned(ctx, "nutri-1", "client-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsAssigned(ctx, "nutri-2", "client-1")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := c.List(ctx, "nutri-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.Unassign(ctx, "nutri-1", "client-1"))
	assert.ErrorIs(t, c.Unassign(ctx, "nutri-1", "client-1"), storage.ErrNotFound)
}

func exports(t *testing.T, e storage.ExportsStorage) {
	ctx := context.Background()

	key := "exports/nutri-1/a.csv"
	ready := &storage.Export{OwnerUserID: "nutri-1", SubjectID: "client-1", Kind: "journal", Format: "csv", FromDate: "2024-05-01", ToDate: "2024-05-07", ObjectKey: &key, SizeBytes: 120, Status: "ready"}
	require.NoError(t, e.Create(ctx, ready))
	assert.NotEqual(t, uuid.Nil, ready.ID)

	got, err := e.Get(ctx, ready.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ObjectKey)
	assert.Equal(t, key, *got.ObjectKey)

	list, err := e.List(ctx, "nutri-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, e.Delete(ctx, ready.ID))
	assert.ErrorIs(t, e.Delete(ctx, ready.ID), storage.ErrNotFound)
}
