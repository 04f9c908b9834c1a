package goals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/storage/memory"
	"github.com/fdg312/nutridesk/internal/userctx"
)

func setup(t *testing.T) (*Handler, *memory.MemoryStorage) {
	t.Helper()
	store := memory.New()
	if _, err := store.GetClientsStorage().Assign(context.Background(), "nutri-1", "client-1", ""); err != nil {
		t.Fatal(err)
	}
	return NewHandler(NewService(store.GetGoalsStorage()), access.NewChecker(store.GetClientsStorage())), store
}

func as(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(userctx.WithIdentity(req.Context(), userID, role))
}

func validBody(userID string) []byte {
	body, _ := json.Marshal(UpsertGoalsRequest{
		UserID:               userID,
		TotalCalories:        1800,
		ProteinsInGrams:      120,
		CarbohydratesInGrams: 180,
		FatInGrams:           60,
		WaterMl:              2500,
	})
	return body
}

func TestHandleGetDefaults(t *testing.T) {
	handler, _ := setup(t)

	w := httptest.NewRecorder()
	handler.HandleGet(w, as(httptest.NewRequest("GET", "/v1/goals", nil), "client-1", userctx.RoleUser))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp GetGoalsResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.IsDefault || resp.Goals.TotalCalories != 2000 || resp.Goals.UserID != "client-1" {
		t.Errorf("unexpected defaults: %+v", resp)
	}
}

func TestHandleUpsert(t *testing.T) {
	t.Run("NutritionistSetsClientGoals", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		req := as(httptest.NewRequest("PUT", "/v1/goals", bytes.NewReader(validBody("client-1"))), "nutri-1", userctx.RoleNutritionist)
		handler.HandleUpsert(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var saved GoalsDTO
		json.NewDecoder(w.Body).Decode(&saved)
		if saved.UserID != "client-1" || saved.UpdatedBy != "nutri-1" || saved.TotalCalories != 1800 {
			t.Errorf("unexpected goals: %+v", saved)
		}

		w = httptest.NewRecorder()
		handler.HandleGet(w, as(httptest.NewRequest("GET", "/v1/goals", nil), "client-1", userctx.RoleUser))
		var resp GetGoalsResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.IsDefault || resp.Goals.WaterMl != 2500 {
			t.Errorf("expected stored goals, got %+v", resp)
		}
	})

	t.Run("UnassignedClientLooksMissing", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		req := as(httptest.NewRequest("PUT", "/v1/goals", bytes.NewReader(validBody("client-2"))), "nutri-1", userctx.RoleNutritionist)
		handler.HandleUpsert(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("UserCannotEditOthers", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		req := as(httptest.NewRequest("PUT", "/v1/goals", bytes.NewReader(validBody("client-1"))), "client-9", userctx.RoleUser)
		handler.HandleUpsert(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		handler, _ := setup(t)

		body, _ := json.Marshal(UpsertGoalsRequest{TotalCalories: 100})
		w := httptest.NewRecorder()
		handler.HandleUpsert(w, as(httptest.NewRequest("PUT", "/v1/goals", bytes.NewReader(body)), "client-1", userctx.RoleUser))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
		var resp map[string]map[string]string
		json.NewDecoder(w.Body).Decode(&resp)
		if resp["error"]["message"] != "totalCalories must be between 800 and 6000" {
			t.Errorf("unexpected message: %q", resp["error"]["message"])
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		handler, _ := setup(t)

		w := httptest.NewRecorder()
		handler.HandleUpsert(w, httptest.NewRequest("PUT", "/v1/goals", bytes.NewReader(validBody(""))))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})
}
