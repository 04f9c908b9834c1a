package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fdg312/nutridesk/internal/config"
	"github.com/fdg312/nutridesk/internal/userctx"
)

func testConfig(mode string, required bool) *config.Config {
	return &config.Config{
		AuthMode:      mode,
		AuthRequired:  required,
		JWTSecret:     "test-secret-key-for-testing-only",
		JWTIssuer:     "nutridesk-test",
		JWTTTLMinutes: 60,
	}
}

func TestHandleDevAuth(t *testing.T) {
	t.Run("IssuesTokenWithRole", func(t *testing.T) {
		service := NewService(testConfig(config.AuthModeDev, true))
		handler := NewHandlers(service)

		body, _ := json.Marshal(DevAuthRequest{UserID: "nutri-1", Role: "Nutritionist"})
		req := httptest.NewRequest("POST", "/v1/auth/dev", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleDevAuth(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}

		var resp DevAuthResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.AccessToken == "" || resp.TokenType != "Bearer" {
			t.Fatalf("unexpected response: %+v", resp)
		}

		id, err := service.VerifyJWT(resp.AccessToken)
		if err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}
		if id.UserID != "nutri-1" || id.Role != userctx.RoleNutritionist {
			t.Errorf("unexpected identity: %+v", id)
		}
	})

	t.Run("EmptyBodyUsesDefaults", func(t *testing.T) {
		handler := NewHandlers(NewService(testConfig(config.AuthModeDev, false)))
		req := httptest.NewRequest("POST", "/v1/auth/dev", nil)
		w := httptest.NewRecorder()

		handler.HandleDevAuth(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		var resp DevAuthResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.UserID != "dev-user" || resp.Role != userctx.RoleNutritionist {
			t.Errorf("unexpected defaults: %+v", resp)
		}
	})

	t.Run("InvalidRole", func(t *testing.T) {
		handler := NewHandlers(NewService(testConfig(config.AuthModeDev, false)))
		body, _ := json.Marshal(DevAuthRequest{Role: "owner"})
		req := httptest.NewRequest("POST", "/v1/auth/dev", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleDevAuth(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("DisabledOutsideDevMode", func(t *testing.T) {
		handler := NewHandlers(NewService(testConfig(config.AuthModeJWT, true)))
		req := httptest.NewRequest("POST", "/v1/auth/dev", nil)
		w := httptest.NewRecorder()

		handler.HandleDevAuth(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})
}

func TestRequireAuth(t *testing.T) {
	cfg := testConfig(config.AuthModeJWT, true)
	service := NewService(cfg)
	middleware := NewMiddleware(cfg, service)

	t.Run("ValidToken", func(t *testing.T) {
		token, err := service.IssueToken("client-7", userctx.RoleUser, time.Hour)
		if err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest("GET", "/v1/days/2024-05-01", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		var calledNext bool
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calledNext = true
			userID, ok := GetUserID(r.Context())
			if !ok || userID != "client-7" {
				t.Errorf("expected user id in context, got %q", userID)
			}
			if userctx.GetRole(r.Context()) != userctx.RoleUser {
				t.Errorf("expected user role")
			}
			w.WriteHeader(http.StatusOK)
		}))

		handler.ServeHTTP(w, req)

		if !calledNext {
			t.Error("expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/menus", nil)
		w := httptest.NewRecorder()

		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("should not call next handler")
		}))
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token, _ := service.IssueToken("client-7", userctx.RoleUser, -time.Minute)
		req := httptest.NewRequest("GET", "/v1/menus", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("should not call next handler")
		})).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		other := NewService(&config.Config{JWTSecret: cfg.JWTSecret, JWTIssuer: "someone-else"})
		token, _ := other.IssueToken("client-7", userctx.RoleAdmin, time.Hour)
		if _, err := service.VerifyJWT(token); err == nil {
			t.Error("expected issuer mismatch to be rejected")
		}
	})

	t.Run("HealthzIsPublic", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()

		var calledNext bool
		middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calledNext = true
		})).ServeHTTP(w, req)

		if !calledNext {
			t.Error("expected /healthz to bypass auth")
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	cfg := testConfig(config.AuthModeDev, false)
	service := NewService(cfg)
	middleware := NewMiddleware(cfg, service)

	t.Run("NoTokenRunsAsDefault", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/goals", nil)
		w := httptest.NewRecorder()

		middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := GetUserID(r.Context())
			if userID != DefaultIdentity.UserID || userctx.GetRole(r.Context()) != DefaultIdentity.Role {
				t.Errorf("expected default identity, got %s/%s", userID, userctx.GetRole(r.Context()))
			}
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})

	t.Run("InvalidTokenRejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/goals", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()

		middleware.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("should not call next handler")
		})).ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
	})

	t.Run("ModeNoneIgnoresHeader", func(t *testing.T) {
		noneCfg := testConfig(config.AuthModeNone, false)
		mw := NewMiddleware(noneCfg, NewService(noneCfg))
		req := httptest.NewRequest("GET", "/v1/goals", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()

		mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", w.Code)
		}
	})
}

func TestVerifyJWTWithoutRoleClaim(t *testing.T) {
	cfg := testConfig(config.AuthModeJWT, true)
	service := NewService(cfg)

	token, err := service.IssueToken("legacy", "", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	id, err := service.VerifyJWT(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Role != userctx.RoleUser {
		t.Errorf("expected missing role to default to user, got %q", id.Role)
	}
}
