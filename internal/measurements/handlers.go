package measurements

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/google/uuid"
)

// HandleList handles GET /v1/measurements?user_id=&from=&to=
func HandleList(service *Service, checker *access.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		userID, err := checker.Subject(r.Context(), q.Get("user_id"))
		if err != nil {
			if !access.WriteError(w, err) {
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve user")
			}
			return
		}

		resp, err := service.List(r.Context(), userID, q.Get("from"), q.Get("to"))
		if err != nil {
			if errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrInvalidRange) {
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to list measurements")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}

// HandleUpsert handles POST /v1/measurements
func HandleUpsert(service *Service, checker *access.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpsertMeasurementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}

		userID, err := checker.Subject(r.Context(), req.UserID)
		if err != nil {
			if !access.WriteError(w, err) {
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve user")
			}
			return
		}

		m, err := service.Upsert(r.Context(), userID, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrWeightRequired):
				writeError(w, http.StatusBadRequest, "weight_required", err.Error())
			case errors.Is(err, ErrInvalidDate):
				writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
			case errors.Is(err, ErrOutOfRange):
				writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to save measurement")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(m)
	}
}

// HandleDelete handles DELETE /v1/measurements/{id}?user_id=
func HandleDelete(service *Service, checker *access.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "invalid measurement id format")
			return
		}

		userID, err := checker.Subject(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			if !access.WriteError(w, err) {
				writeError(w, http.StatusInternalServerError, "internal_error", "failed to resolve user")
			}
			return
		}

		if err := service.Delete(r.Context(), userID, id); err != nil {
			if errors.Is(err, ErrMeasurementNotFound) {
				writeError(w, http.StatusNotFound, "measurement_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete measurement")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
