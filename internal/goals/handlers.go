package goals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/userctx"
)

// Handler handles HTTP requests for nutrition goals.
type Handler struct {
	service *Service
	access  *access.Checker
}

// NewHandler creates a new goals handler.
func NewHandler(service *Service, checker *access.Checker) *Handler {
	return &Handler{service: service, access: checker}
}

// HandleGet handles GET /v1/goals?user_id=
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := h.access.Subject(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		if !access.WriteError(w, err) {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get goals")
		}
		return
	}

	goals, isDefault, err := h.service.GetOrDefault(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get goals")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(GetGoalsResponse{Goals: goals, IsDefault: isDefault})
}

// HandleUpsert handles PUT /v1/goals
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpsertGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	userID, err := h.access.Subject(ctx, req.UserID)
	if err != nil {
		if !access.WriteError(w, err) {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to upsert goals")
		}
		return
	}
	callerID, _ := userctx.GetUserID(ctx)

	goals, err := h.service.Upsert(ctx, userID, callerID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to upsert goals")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(goals)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
