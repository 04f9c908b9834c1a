package exports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/daylog"
	"github.com/fdg312/nutridesk/internal/menus"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/fdg312/nutridesk/internal/userctx"
	"github.com/google/uuid"
)

// Handlers handles HTTP requests for exports.
type Handlers struct {
	service *Service
	access  *access.Checker
}

// NewHandlers creates new exports handlers.
func NewHandlers(service *Service, checker *access.Checker) *Handlers {
	return &Handlers{service: service, access: checker}
}

// HandleCreate handles POST /v1/exports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req CreateExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	if strings.EqualFold(strings.TrimSpace(req.Kind), KindJournal) {
		subject, err := h.access.Subject(r.Context(), req.UserID)
		if err != nil {
			if !access.WriteError(w, err) {
				writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
			}
			return
		}
		req.UserID = subject
	}

	export, err := h.service.Create(r.Context(), callerID, isAdmin(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(h.toDTO(r, export))
}

// HandleList handles GET /v1/exports?limit=&offset=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	callerID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	exports, err := h.service.List(r.Context(), callerID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}

	dtos := make([]ExportDTO, len(exports))
	for i := range exports {
		dtos[i] = h.toDTO(r, &exports[i])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExportsResponse{Exports: dtos})
}

// HandleDownload handles GET /v1/exports/{id}/download
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	export, ok := h.load(w, r)
	if !ok {
		return
	}

	url, err := h.service.DirectURL(r.Context(), export)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if url != "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	data, ct, err := h.service.Data(r.Context(), export)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", export.Kind, export.ID, export.Format)
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// HandleDelete handles DELETE /v1/exports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return
	}

	if err := h.service.Delete(r.Context(), callerID, isAdmin(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) load(w http.ResponseWriter, r *http.Request) (*storage.Export, bool) {
	callerID, ok := userctx.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return nil, false
	}

	export, err := h.service.Get(r.Context(), callerID, isAdmin(r), id)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return export, true
}

func (h *Handlers) toDTO(r *http.Request, e *storage.Export) ExportDTO {
	dto := ExportDTO{
		ID:        e.ID,
		Kind:      e.Kind,
		Format:    e.Format,
		SubjectID: e.SubjectID,
		From:      e.FromDate,
		To:        e.ToDate,
		SizeBytes: e.SizeBytes,
		Status:    e.Status,
		Error:     e.Error,
		CreatedAt: e.CreatedAt,
	}
	if e.Status == StatusReady {
		dto.DownloadURL, _ = h.service.DownloadURL(r.Context(), e, getBaseURL(r))
	}
	return dto
}

func isAdmin(r *http.Request) bool {
	return userctx.GetRole(r.Context()) == userctx.RoleAdmin
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrMenuRequired):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, daylog.ErrInvalidDate), errors.Is(err, daylog.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, daylog.ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, "range_too_large", err.Error())
	case errors.Is(err, menus.ErrNotFound):
		writeError(w, http.StatusNotFound, "menu_not_found", "Menu not found")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "export_not_found", "Export not found")
	case errors.Is(err, ErrNotReady):
		writeError(w, http.StatusConflict, "export_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

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

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
