package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/fdg312/nutridesk/internal/storage/memory"
	"github.com/fdg312/nutridesk/internal/userctx"
)

type failingCatalogRepo struct {
	storage.CatalogStorage
}

func (failingCatalogRepo) Search(ctx context.Context, q storage.CatalogQuery) ([]storage.CatalogItemRow, int, error) {
	return nil, 0, errors.New("connection reset")
}

func intp(v int) *int { return &v }

func seed(t *testing.T, svc *Service) (food, recipe nutrient.CatalogItem) {
	t.Helper()
	ctx := context.Background()

	food, err := svc.Create(ctx, "admin", nutrient.CatalogItem{
		Name:           "Oats",
		TotalCalories:  380,
		TotalNutrients: &nutrient.Nutrients{ProteinsInGrams: 13, CarbohydratesInGrams: 60, FatInGrams: 7},
		ServingOptions: []nutrient.ServingOption{
			{ProfileID: intp(nutrient.GramsProfileID), Name: "g", Amount: 100},
			{Name: "cup", Amount: 80},
		},
	})
	if err != nil {
		t.Fatalf("seed food: %v", err)
	}

	recipe, err = svc.Create(ctx, "admin", nutrient.CatalogItem{
		Name:             "Lasagna",
		ItemType:         "RECIPE",
		TotalCalories:    600,
		NumberOfServings: 3,
		TotalNutrients:   &nutrient.Nutrients{ProteinsInGrams: 30, TotalQuantity: 450},
		ServingOptions: []nutrient.ServingOption{
			{ProfileID: intp(nutrient.PortionProfileID), Name: "portion", Amount: 150},
		},
	})
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return food, recipe
}

func staffRequest(method, target string, body []byte, role string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(userctx.WithIdentity(req.Context(), "staff-1", role))
}

func TestHandleSearch(t *testing.T) {
	svc := NewService(memory.New().GetCatalogStorage(), 10)
	seed(t, svc)
	handler := NewHandler(svc)

	t.Run("FiltersByType", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/catalog/search?type=recipe", nil)
		w := httptest.NewRecorder()
		handler.HandleSearch(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp SearchResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Total != 1 || resp.Items[0].Name != "Lasagna" {
			t.Errorf("unexpected result: %+v", resp)
		}
	})

	t.Run("TextIsCaseInsensitive", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/catalog/search?q=OAT", nil)
		w := httptest.NewRecorder()
		handler.HandleSearch(w, req)

		var resp SearchResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Total != 1 || resp.Items[0].Name != "Oats" {
			t.Errorf("unexpected result: %+v", resp)
		}
	})

	t.Run("LimitIsCapped", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/catalog/search?limit=500", nil)
		w := httptest.NewRecorder()
		handler.HandleSearch(w, req)

		var resp SearchResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Limit != 10 {
			t.Errorf("expected limit 10, got %d", resp.Limit)
		}
	})

	t.Run("InvalidType", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/catalog/search?type=drink", nil)
		w := httptest.NewRecorder()
		handler.HandleSearch(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("StorageError", func(t *testing.T) {
		h := NewHandler(NewService(failingCatalogRepo{}, 10))
		req := httptest.NewRequest("GET", "/v1/catalog/search", nil)
		w := httptest.NewRecorder()
		h.HandleSearch(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", w.Code)
		}
	})
}

func TestHandleCreate(t *testing.T) {
	svc := NewService(memory.New().GetCatalogStorage(), 10)
	handler := NewHandler(svc)

	t.Run("UserRoleForbidden", func(t *testing.T) {
		body, _ := json.Marshal(nutrient.CatalogItem{Name: "Apple", TotalCalories: 52})
		w := httptest.NewRecorder()
		handler.HandleCreate(w, staffRequest("POST", "/v1/catalog/items", body, userctx.RoleUser))

		if w.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", w.Code)
		}
	})

	t.Run("RecipeNeedsServings", func(t *testing.T) {
		body, _ := json.Marshal(nutrient.CatalogItem{Name: "Stew", Type: "recipe", TotalCalories: 400})
		w := httptest.NewRecorder()
		handler.HandleCreate(w, staffRequest("POST", "/v1/catalog/items", body, userctx.RoleNutritionist))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("NegativeNutrient", func(t *testing.T) {
		body, _ := json.Marshal(nutrient.CatalogItem{
			Name:           "Bad",
			TotalNutrients: &nutrient.Nutrients{FatInGrams: -1},
		})
		w := httptest.NewRecorder()
		handler.HandleCreate(w, staffRequest("POST", "/v1/catalog/items", body, userctx.RoleAdmin))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("StripsMenuAnnotations", func(t *testing.T) {
		body, _ := json.Marshal(nutrient.CatalogItem{
			Name:                  "Apple",
			TotalCalories:         52,
			OriginalServingAmount: 250,
			ChangedServing:        &nutrient.ChangedServing{Value: 2},
		})
		w := httptest.NewRecorder()
		handler.HandleCreate(w, staffRequest("POST", "/v1/catalog/items", body, userctx.RoleNutritionist))

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var created nutrient.CatalogItem
		json.NewDecoder(w.Body).Decode(&created)
		if created.ID == 0 || created.OriginalServingAmount != 0 || created.ChangedServing != nil {
			t.Errorf("unexpected item: %+v", created)
		}
	})
}

func TestHandleDelete(t *testing.T) {
	svc := NewService(memory.New().GetCatalogStorage(), 10)
	food, _ := seed(t, svc)
	handler := NewHandler(svc)

	t.Run("NutritionistForbidden", func(t *testing.T) {
		req := staffRequest("DELETE", "/v1/catalog/items/1", nil, userctx.RoleNutritionist)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.HandleDelete(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", w.Code)
		}
	})

	t.Run("AdminDeletes", func(t *testing.T) {
		req := staffRequest("DELETE", "/v1/catalog/items/1", nil, userctx.RoleAdmin)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		handler.HandleDelete(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", w.Code)
		}
		if _, err := svc.Get(context.Background(), food.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected item to be gone, got %v", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		req := staffRequest("DELETE", "/v1/catalog/items/99", nil, userctx.RoleAdmin)
		req.SetPathValue("id", "99")
		w := httptest.NewRecorder()
		handler.HandleDelete(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}

func TestHandleScale(t *testing.T) {
	svc := NewService(memory.New().GetCatalogStorage(), 10)
	food, recipe := seed(t, svc)
	handler := NewHandler(svc)

	scale := func(id int64, req ScaleRequest) (*httptest.ResponseRecorder, ScaleResponse) {
		body, _ := json.Marshal(req)
		r := httptest.NewRequest("POST", "/v1/catalog/items/x/scale", bytes.NewReader(body))
		r.SetPathValue("id", jsonInt(id))
		w := httptest.NewRecorder()
		handler.HandleScale(w, r)
		var resp ScaleResponse
		json.Unmarshal(w.Body.Bytes(), &resp)
		return w, resp
	}

	t.Run("FoodInGrams", func(t *testing.T) {
		w, resp := scale(food.ID, ScaleRequest{Amount: 200})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if resp.Calories != 760 || math.Abs(resp.Nutrients.ProteinsInGrams-26) > 1e-9 {
			t.Errorf("unexpected scale: %+v", resp)
		}
		if resp.IsRecipe || resp.OriginalServingAmount != 100 || resp.ChangedServing != nil {
			t.Errorf("unexpected metadata: %+v", resp)
		}
	})

	t.Run("FoodByServing", func(t *testing.T) {
		_, resp := scale(food.ID, ScaleRequest{Amount: 2, ServingID: "cup"})
		// 2 cups of 80 g = 160 g
		if resp.Calories != 608 {
			t.Errorf("expected 608 kcal, got %v", resp.Calories)
		}
		if resp.ChangedServing == nil || resp.ChangedServing.Value != 160 || resp.ChangedServing.Serving.Name != "cup" {
			t.Errorf("unexpected changed serving: %+v", resp.ChangedServing)
		}
	})

	t.Run("RecipePortion", func(t *testing.T) {
		_, resp := scale(recipe.ID, ScaleRequest{Amount: 1, ServingID: "portion"})
		if !resp.IsRecipe || resp.Calories != 200 {
			t.Errorf("expected one portion of 200 kcal, got %+v", resp)
		}
	})

	t.Run("UnknownServing", func(t *testing.T) {
		w, _ := scale(food.ID, ScaleRequest{Amount: 1, ServingID: "bowl"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		w, _ := scale(food.ID, ScaleRequest{Amount: 0})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("UnknownItem", func(t *testing.T) {
		w, _ := scale(404, ScaleRequest{Amount: 1})
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
