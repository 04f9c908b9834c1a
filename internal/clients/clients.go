// Package clients manages nutritionist to client assignments.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/fdg312/nutridesk/internal/userctx"
)

var (
	ErrNotFound       = errors.New("client assignment not found")
	ErrClientRequired = errors.New("clientId is required")
	ErrSelfAssignment = errors.New("cannot assign yourself as a client")
	ErrNoteTooLong    = errors.New("note must be at most 500 characters")
)

// ClientDTO is an assigned client.
type ClientDTO struct {
	NutritionistID string    `json:"nutritionistId"`
	ClientID       string    `json:"clientId"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListClientsResponse is the response for GET /v1/clients.
type ListClientsResponse struct {
	Clients []ClientDTO `json:"clients"`
}

// AssignRequest is the body of POST /v1/clients. NutritionistID is honoured
// for admins only.
type AssignRequest struct {
	ClientID       string `json:"clientId"`
	NutritionistID string `json:"nutritionistId,omitempty"`
	Note           string `json:"note,omitempty"`
}

type Service struct {
	storage storage.ClientsStorage
}

func NewService(storage storage.ClientsStorage) *Service {
	return &Service{storage: storage}
}

func (s *Service) List(ctx context.Context, nutritionistID string) ([]ClientDTO, error) {
	rows, err := s.storage.List(ctx, nutritionistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	out := make([]ClientDTO, len(rows))
	for i, a := range rows {
		out[i] = toDTO(a)
	}
	return out, nil
}

func (s *Service) Assign(ctx context.Context, nutritionistID string, req AssignRequest) (ClientDTO, error) {
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		return ClientDTO{}, ErrClientRequired
	}
	if clientID == nutritionistID {
		return ClientDTO{}, ErrSelfAssignment
	}
	note := strings.TrimSpace(req.Note)
	if len(note) > 500 {
		return ClientDTO{}, ErrNoteTooLong
	}

	a, err := s.storage.Assign(ctx, nutritionistID, clientID, note)
	if err != nil {
		return ClientDTO{}, fmt.Errorf("failed to assign client: %w", err)
	}
	return toDTO(*a), nil
}

func (s *Service) Unassign(ctx context.Context, nutritionistID, clientID string) error {
	if err := s.storage.Unassign(ctx, nutritionistID, clientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to unassign client: %w", err)
	}
	return nil
}

func toDTO(a storage.ClientAssignment) ClientDTO {
	return ClientDTO{
		NutritionistID: a.NutritionistID,
		ClientID:       a.ClientID,
		Note:           a.Note,
		CreatedAt:      a.CreatedAt,
	}
}

// HandleList handles GET /v1/clients?nutritionist_id=
func HandleList(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nutritionistID, ok := resolveNutritionist(w, r, r.URL.Query().Get("nutritionist_id"))
		if !ok {
			return
		}

		clients, err := service.List(r.Context(), nutritionistID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list clients")
			return
		}

		writeJSON(w, http.StatusOK, ListClientsResponse{Clients: clients})
	}
}

// HandleAssign handles POST /v1/clients
func HandleAssign(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
			return
		}

		nutritionistID, ok := resolveNutritionist(w, r, req.NutritionistID)
		if !ok {
			return
		}

		client, err := service.Assign(r.Context(), nutritionistID, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrClientRequired), errors.Is(err, ErrSelfAssignment), errors.Is(err, ErrNoteTooLong):
				writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", "Failed to assign client")
			}
			return
		}

		writeJSON(w, http.StatusCreated, client)
	}
}

// HandleUnassign handles DELETE /v1/clients/{clientId}?nutritionist_id=
func HandleUnassign(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nutritionistID, ok := resolveNutritionist(w, r, r.URL.Query().Get("nutritionist_id"))
		if !ok {
			return
		}

		err := service.Unassign(r.Context(), nutritionistID, r.PathValue("clientId"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "not_found", "Client not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to unassign client")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// resolveNutritionist returns whose client list the request is about. Only
// staff may manage assignments; only admins may act for someone else.
func resolveNutritionist(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	ctx := r.Context()
	if err := access.RequireStaff(ctx); err != nil {
		access.WriteError(w, err)
		return "", false
	}

	callerID, _ := userctx.GetUserID(ctx)
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == callerID {
		return callerID, true
	}
	if userctx.GetRole(ctx) != userctx.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "only admins may manage other nutritionists' clients")
		return "", false
	}
	return requested, true
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
