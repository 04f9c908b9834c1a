package daylog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/daycache"
	"github.com/fdg312/nutridesk/internal/goals"
	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/fdg312/nutridesk/internal/storage/memory"
	"github.com/fdg312/nutridesk/internal/userctx"
)

func intp(v int) *int { return &v }

func apple() *nutrient.CatalogItem {
	return &nutrient.CatalogItem{
		ID:             3,
		Name:           "Apple",
		TotalCalories:  52,
		TotalNutrients: &nutrient.Nutrients{ProteinsInGrams: 0.3, CarbohydratesInGrams: 14, FatInGrams: 0.2},
		ServingOptions: []nutrient.ServingOption{{ProfileID: intp(nutrient.GramsProfileID), Name: "g", Amount: 100}},
	}
}

func stew() *nutrient.CatalogItem {
	return &nutrient.CatalogItem{
		ID:               9,
		Name:             "Stew",
		ItemType:         "RECIPE",
		TotalCalories:    600,
		NumberOfServings: 3,
		TotalNutrients:   &nutrient.Nutrients{ProteinsInGrams: 45, CarbohydratesInGrams: 30, FatInGrams: 21},
		ServingOptions:   []nutrient.ServingOption{{ProfileID: intp(nutrient.PortionProfileID), Name: "portion", Amount: 150}},
	}
}

// countingEntries counts List calls so tests can see the day cache at work.
type countingEntries struct {
	storage.DayEntriesStorage
	lists int
}

func (c *countingEntries) List(ctx context.Context, userID string, from, to string) ([]storage.DayEntry, error) {
	c.lists++
	return c.DayEntriesStorage.List(ctx, userID, from, to)
}

type fixture struct {
	store   *memory.MemoryStorage
	entries *countingEntries
	service *Service
	handler *Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.GetClientsStorage().Assign(context.Background(), "nutri-1", "client-1", "")

	entries := &countingEntries{DayEntriesStorage: store.GetDayEntriesStorage()}
	loader := daycache.New[[]storage.DayEntry]("day", newMapCache(), time.Minute, nil)
	service := NewService(entries, goals.NewService(store.GetGoalsStorage()), loader, Options{MaxEntriesPerDay: 5, MaxJournalDays: 7})

	return &fixture{
		store:   store,
		entries: entries,
		service: service,
		handler: NewHandler(service, access.NewChecker(store.GetClientsStorage())),
	}
}

func as(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(userctx.WithIdentity(req.Context(), userID, role))
}

func (f *fixture) add(t *testing.T, date string, req CreateEntryRequest, callerID, role string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	r := as(httptest.NewRequest("POST", "/v1/days/"+date+"/entries", bytes.NewReader(body)), callerID, role)
	r.SetPathValue("date", date)
	w := httptest.NewRecorder()
	f.handler.HandleCreateEntry(w, r)
	return w
}

func (f *fixture) day(t *testing.T, date, query, callerID, role string) (*httptest.ResponseRecorder, DayResponse) {
	t.Helper()
	r := as(httptest.NewRequest("GET", "/v1/days/"+date+query, nil), callerID, role)
	r.SetPathValue("date", date)
	w := httptest.NewRecorder()
	f.handler.HandleGetDay(w, r)
	var resp DayResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestDayTotals(t *testing.T) {
	f := setup(t)
	const date = "2024-05-01"

	for _, req := range []CreateEntryRequest{
		{Slot: "breakfast", Food: apple(), Quantity: 200},
		{Slot: "Lunch", Food: stew(), Quantity: 150},
		{Slot: "exercise", Exercise: &nutrient.Exercise{Name: "Run", CaloriesBurnt: 300, DurationInMinutes: 30}},
		{Slot: "water", AmountMl: 500},
		{Slot: "water", AmountMl: 750},
	} {
		if w := f.add(t, date, req, "client-1", userctx.RoleUser); w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w, day := f.day(t, date, "", "client-1", userctx.RoleUser)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(day.Meals.Breakfast) != 1 || len(day.Meals.Lunch) != 1 || len(day.Exercise) != 1 || len(day.Water) != 2 {
		t.Fatalf("unexpected grouping: %+v", day)
	}
	if day.Meals.Breakfast[0].Scaled.Calories != 104 {
		t.Errorf("expected 104 kcal for 200 g apple, got %v", day.Meals.Breakfast[0].Scaled.Calories)
	}
	if day.Meals.Breakfast[0].Item.Food.OriginalServingAmount != 100 {
		t.Errorf("expected pinned original serving, got %v", day.Meals.Breakfast[0].Item.Food.OriginalServingAmount)
	}
	// One 150 g portion of a three-portion 600 kcal stew.
	if day.Meals.Lunch[0].Scaled.Calories != 200 {
		t.Errorf("expected 200 kcal stew portion, got %v", day.Meals.Lunch[0].Scaled.Calories)
	}
	if day.Totals.Grand.Calories != 304 || day.Totals.Breakfast.Calories != 104 || day.Totals.Lunch.Calories != 200 {
		t.Errorf("unexpected totals: %+v", day.Totals)
	}
	if day.BurntCalories != 300 || day.NetCalories != 4 || day.WaterMl != 1250 {
		t.Errorf("unexpected burnt/net/water: %v/%v/%v", day.BurntCalories, day.NetCalories, day.WaterMl)
	}
	if !day.GoalsIsDefault || day.Percentages.Calories != 15.2 || day.Percentages.Water != 62.5 {
		t.Errorf("unexpected percentages: %+v", day.Percentages)
	}
}

func TestDayCacheInvalidatedOnWrite(t *testing.T) {
	f := setup(t)
	const date = "2024-05-02"

	f.add(t, date, CreateEntryRequest{Slot: "snack", Food: apple(), Quantity: 100}, "client-1", userctx.RoleUser)

	f.day(t, date, "", "client-1", userctx.RoleUser)
	before := f.entries.lists
	_, day := f.day(t, date, "", "client-1", userctx.RoleUser)
	if f.entries.lists != before {
		t.Errorf("expected second read to be served from cache")
	}
	if day.Totals.Grand.Calories != 52 {
		t.Fatalf("expected 52 kcal, got %v", day.Totals.Grand.Calories)
	}

	w := f.add(t, date, CreateEntryRequest{Slot: "snack", Food: apple(), Quantity: 100}, "client-1", userctx.RoleUser)
	var created EntryDTO
	json.NewDecoder(w.Body).Decode(&created)

	_, day = f.day(t, date, "", "client-1", userctx.RoleUser)
	if day.Totals.Grand.Calories != 104 {
		t.Errorf("expected write to invalidate cache, got %v", day.Totals.Grand.Calories)
	}

	r := as(httptest.NewRequest("DELETE", "/v1/days/"+date+"/entries/"+created.ID.String(), nil), "client-1", userctx.RoleUser)
	r.SetPathValue("date", date)
	r.SetPathValue("id", created.ID.String())
	dw := httptest.NewRecorder()
	f.handler.HandleDeleteEntry(dw, r)
	if dw.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", dw.Code)
	}

	_, day = f.day(t, date, "", "client-1", userctx.RoleUser)
	if day.Totals.Grand.Calories != 52 {
		t.Errorf("expected delete to invalidate cache, got %v", day.Totals.Grand.Calories)
	}
}

func TestDayAccess(t *testing.T) {
	f := setup(t)

	if w, _ := f.day(t, "2024-05-01", "?user_id=client-1", "nutri-1", userctx.RoleNutritionist); w.Code != http.StatusOK {
		t.Errorf("expected assigned nutritionist to read client day, got %d", w.Code)
	}
	if w, _ := f.day(t, "2024-05-01", "?user_id=client-1", "nutri-2", userctx.RoleNutritionist); w.Code != http.StatusNotFound {
		t.Errorf("expected unassigned nutritionist to get 404, got %d", w.Code)
	}
	if w, _ := f.day(t, "05/01/2024", "", "client-1", userctx.RoleUser); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", w.Code)
	}

	// Nutritionists log on behalf of their clients.
	w := f.add(t, "2024-05-01", CreateEntryRequest{UserID: "client-1", Slot: "dinner", Food: apple(), Quantity: 50}, "nutri-1", userctx.RoleNutritionist)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}
	var entry EntryDTO
	json.NewDecoder(w.Body).Decode(&entry)
	if entry.CreatedBy != "nutri-1" {
		t.Errorf("expected createdBy nutri-1, got %q", entry.CreatedBy)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		req  CreateEntryRequest
	}{
		{"UnknownSlot", CreateEntryRequest{Slot: "brunch", Food: apple(), Quantity: 1}},
		{"MissingFood", CreateEntryRequest{Slot: "lunch", Quantity: 1}},
		{"ZeroQuantity", CreateEntryRequest{Slot: "lunch", Food: apple()}},
		{"MissingExercise", CreateEntryRequest{Slot: "exercise"}},
		{"NoWater", CreateEntryRequest{Slot: "water"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := f.add(t, "2024-05-01", tt.req, "client-1", userctx.RoleUser); w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}

	t.Run("DayFull", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			f.add(t, "2024-05-03", CreateEntryRequest{Slot: "water", AmountMl: 100}, "client-1", userctx.RoleUser)
		}
		if w := f.add(t, "2024-05-03", CreateEntryRequest{Slot: "water", AmountMl: 100}, "client-1", userctx.RoleUser); w.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", w.Code)
		}
	})
}

func TestJournal(t *testing.T) {
	f := setup(t)

	f.add(t, "2024-05-01", CreateEntryRequest{Slot: "lunch", Food: apple(), Quantity: 100}, "client-1", userctx.RoleUser)
	f.add(t, "2024-05-03", CreateEntryRequest{Slot: "lunch", Food: apple(), Quantity: 300}, "client-1", userctx.RoleUser)
	f.add(t, "2024-05-03", CreateEntryRequest{Slot: "exercise", Exercise: &nutrient.Exercise{Name: "Swim", CaloriesBurnt: 250}}, "client-1", userctx.RoleUser)

	journal := func(query string) (*httptest.ResponseRecorder, JournalResponse) {
		r := as(httptest.NewRequest("GET", "/v1/journal"+query, nil), "nutri-1", userctx.RoleNutritionist)
		w := httptest.NewRecorder()
		f.handler.HandleJournal(w, r)
		var resp JournalResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		return w, resp
	}

	w, resp := journal("?user_id=client-1&from=2024-05-01&to=2024-05-03")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(resp.Days) != 3 || resp.LoggedDays != 2 {
		t.Fatalf("unexpected days: %+v", resp)
	}
	if resp.Days[1].Entries != 0 || resp.Days[2].Totals.Calories != 156 || resp.Days[2].BurntCalories != 250 {
		t.Errorf("unexpected day values: %+v", resp.Days)
	}
	if resp.Average.Calories != 104 {
		t.Errorf("expected average 104 kcal over logged days, got %v", resp.Average.Calories)
	}

	if w, _ := journal("?user_id=client-1&from=2024-05-01&to=2024-05-20"); w.Code != http.StatusBadRequest {
		t.Errorf("expected range limit to reject, got %d", w.Code)
	}
	if w, _ := journal("?user_id=client-1&from=2024-05-03&to=2024-05-01"); w.Code != http.StatusBadRequest {
		t.Errorf("expected inverted range to reject, got %d", w.Code)
	}
}

type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, daycache.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}
