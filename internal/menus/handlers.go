package menus

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/fdg312/nutridesk/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for menu templates.
type Handler struct {
	service *Service
}

// NewHandler creates a new menus handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/menus
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}

	menus, err := h.service.List(r.Context(), callerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list menus")
		return
	}
	writeJSON(w, http.StatusOK, ListMenusResponse{Menus: menus})
}

// HandleGet handles GET /v1/menus/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	menu, err := h.service.Get(r.Context(), callerID, isAdmin(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// HandleCreate handles POST /v1/menus
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}

	var req nutrient.MenuTemplate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	menu, err := h.service.Create(r.Context(), callerID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, menu)
}

// HandleUpdate handles PUT /v1/menus/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req nutrient.MenuTemplate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	menu, err := h.service.Update(r.Context(), callerID, isAdmin(r), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// HandleDelete handles DELETE /v1/menus/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), callerID, isAdmin(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return "", false
	}
	return userID, true
}

func isAdmin(r *http.Request) bool {
	return userctx.GetRole(r.Context()) == userctx.RoleAdmin
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid menu id")
		return uuid.Nil, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Menu not found")
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Menu request failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
