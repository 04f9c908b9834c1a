package daylog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/userctx"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for days and journals.
type Handler struct {
	service *Service
	access  *access.Checker
}

// NewHandler creates a new day log handler.
func NewHandler(service *Service, checker *access.Checker) *Handler {
	return &Handler{service: service, access: checker}
}

// HandleGetDay handles GET /v1/days/{date}?user_id=
func (h *Handler) HandleGetDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.subject(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}

	day, err := h.service.Day(r.Context(), userID, r.PathValue("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// HandleCreateEntry handles POST /v1/days/{date}/entries
func (h *Handler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	userID, ok := h.subject(w, r, req.UserID)
	if !ok {
		return
	}
	callerID, _ := userctx.GetUserID(r.Context())

	entry, err := h.service.AddEntry(r.Context(), userID, callerID, r.PathValue("date"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleDeleteEntry handles DELETE /v1/days/{date}/entries/{id}?user_id=
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid entry id")
		return
	}

	userID, ok := h.subject(w, r, r.URL.Query().Get("user_id"))
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(r.Context(), userID, r.PathValue("date"), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleJournal handles GET /v1/journal?user_id=&from=&to=
func (h *Handler) HandleJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, ok := h.subject(w, r, q.Get("user_id"))
	if !ok {
		return
	}

	journal, err := h.service.Journal(r.Context(), userID, q.Get("from"), q.Get("to"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, journal)
}

func (h *Handler) subject(w http.ResponseWriter, r *http.Request, target string) (string, bool) {
	userID, err := h.access.Subject(r.Context(), target)
	if err != nil {
		if !access.WriteError(w, err) {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve user")
		}
		return "", false
	}
	return userID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidRange), errors.Is(err, ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, ErrDayFull):
		writeError(w, http.StatusConflict, "limit_reached", err.Error())
	case errors.Is(err, ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Entry not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Day log request failed")
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
