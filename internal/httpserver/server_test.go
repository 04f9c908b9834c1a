package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/nutridesk/internal/config"
	"github.com/fdg312/nutridesk/internal/daylog"
	"github.com/fdg312/nutridesk/internal/exports"
	"github.com/fdg312/nutridesk/internal/nutrient"
)

func TestHealthz(t *testing.T) {
	srv := New(&config.Config{Port: 8080})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(&config.Config{Port: 8080})

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func call(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// The default identity is an admin when no token is required.
func TestCatalogToDayToExport(t *testing.T) {
	srv := New(&config.Config{Port: 8080, AuthMode: config.AuthModeNone})
	h := srv.Handler()

	oats := nutrient.CatalogItem{
		Name:           "Oats",
		TotalCalories:  380,
		TotalNutrients: &nutrient.Nutrients{ProteinsInGrams: 13, CarbohydratesInGrams: 67, FatInGrams: 7},
		ServingOptions: []nutrient.ServingOption{{Name: "g", Amount: 100}},
	}
	w := call(t, h, http.MethodPost, "/v1/catalog/items", oats)
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created nutrient.CatalogItem
	json.NewDecoder(w.Body).Decode(&created)

	w = call(t, h, http.MethodPost, "/v1/days/2024-05-01/entries", daylog.CreateEntryRequest{
		Slot: "breakfast", Food: &created, Quantity: 50,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create entry: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = call(t, h, http.MethodGet, "/v1/days/2024-05-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get day: expected 200, got %d", w.Code)
	}
	var day daylog.DayResponse
	json.NewDecoder(w.Body).Decode(&day)
	if day.Totals.Grand.Calories != 190 {
		t.Errorf("expected 190 kcal, got %v", day.Totals.Grand.Calories)
	}

	w = call(t, h, http.MethodPost, "/v1/exports", exports.CreateExportRequest{
		Kind: "journal", Format: "csv", From: "2024-05-01", To: "2024-05-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create export: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var export exports.ExportDTO
	json.NewDecoder(w.Body).Decode(&export)

	w = call(t, h, http.MethodGet, "/v1/exports/"+export.ID.String()+"/download", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "2024-05-01,190.0,6.5,33.5,3.5,0.0,0.0,1\n") {
		t.Errorf("unexpected export:\n%s", w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := New(&config.Config{Port: 8080})
	w := call(t, srv.Handler(), http.MethodGet, "/v1/profiles", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
