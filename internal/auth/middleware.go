package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/fdg312/nutridesk/internal/config"
)

// Middleware authenticates requests.
type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
	}
}

// Handler picks RequireAuth or OptionalAuth from the configuration.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m.config.AuthRequired {
		return m.RequireAuth(next)
	}
	return m.OptionalAuth(next)
}

// RequireAuth rejects non-public requests without a valid Bearer token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.authenticateHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// OptionalAuth validates a Bearer token only when it is provided. Requests
// without one run as DefaultIdentity. With AUTH_MODE=none headers are ignored.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if m.config.AuthMode == config.AuthModeNone || strings.TrimSpace(authHeader) == "" {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), DefaultIdentity)))
			return
		}

		id, err := m.authenticateHeader(authHeader)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		log.Printf("auth token accepted: sub=%s role=%s method=%s path=%s", id.UserID, id.Role, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (Identity, error) {
	if authHeader == "" {
		return Identity{}, ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Identity{}, ErrInvalidToken
	}

	return m.service.VerifyJWT(parts[1])
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}

func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/v1/auth/")
}
