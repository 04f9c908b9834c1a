package menus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("menu not found")
	ErrValidation = errors.New("validation failed")
)

// Service handles menu template business logic.
type Service struct {
	storage    storage.MenusStorage
	maxPerSlot int
}

// NewService creates a new menus service.
func NewService(storage storage.MenusStorage, maxPerSlot int) *Service {
	if maxPerSlot <= 0 {
		maxPerSlot = 30
	}
	return &Service{storage: storage, maxPerSlot: maxPerSlot}
}

// List returns the caller's menus with their grand totals.
func (s *Service) List(ctx context.Context, ownerUserID string) ([]MenuSummaryDTO, error) {
	rows, err := s.storage.List(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}

	out := make([]MenuSummaryDTO, 0, len(rows))
	for _, row := range rows {
		p, err := decodePlans(row)
		if err != nil {
			return nil, err
		}
		out = append(out, MenuSummaryDTO{
			ID:        row.ID,
			Name:      row.Name,
			ItemCount: len(p.BreakfastPlan) + len(p.LunchPlan) + len(p.DinnerPlan) + len(p.SnackPlan),
			Totals:    nutrient.AggregatePlanMeals(p.template(row.Name)).Grand,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

// Get returns a menu visible to the caller. Admins see every menu.
func (s *Service) Get(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID) (*MenuDTO, error) {
	row, p, err := s.load(ctx, callerID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	return toDTO(row, p), nil
}

// Template returns the stored template for rendering.
func (s *Service) Template(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID) (nutrient.MenuTemplate, error) {
	row, p, err := s.load(ctx, callerID, isAdmin, id)
	if err != nil {
		return nutrient.MenuTemplate{}, err
	}
	return p.template(row.Name), nil
}

// Create validates, pins and stores a new template.
func (s *Service) Create(ctx context.Context, ownerUserID string, t nutrient.MenuTemplate) (*MenuDTO, error) {
	p, err := s.prepare(&t)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode menu: %w", err)
	}

	row := &storage.MenuTemplate{
		OwnerUserID: ownerUserID,
		Name:        t.Name,
		Plans:       payload,
	}
	if err := s.storage.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", err)
	}
	return toDTO(row, p), nil
}

// Update replaces name and plans of a menu owned by the caller.
func (s *Service) Update(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID, t nutrient.MenuTemplate) (*MenuDTO, error) {
	row, _, err := s.load(ctx, callerID, isAdmin, id)
	if err != nil {
		return nil, err
	}

	p, err := s.prepare(&t)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode menu: %w", err)
	}

	row.Name = t.Name
	row.Plans = payload
	if err := s.storage.Update(ctx, row); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update menu: %w", err)
	}
	return toDTO(row, p), nil
}

// Delete removes a menu owned by the caller.
func (s *Service) Delete(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID) error {
	if _, _, err := s.load(ctx, callerID, isAdmin, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete menu: %w", err)
	}
	return nil
}

// prepare validates t and pins every item to its original serving. Items
// pinned by an earlier write keep their values.
func (s *Service) prepare(t *nutrient.MenuTemplate) (plans, error) {
	if err := validateTemplate(t, s.maxPerSlot); err != nil {
		return plans{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	p := plansOf(*t)
	for _, sl := range p.slots() {
		for i := range sl.items {
			nutrient.PinOriginalServing(&sl.items[i])
		}
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, callerID string, isAdmin bool, id uuid.UUID) (*storage.MenuTemplate, plans, error) {
	row, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, plans{}, ErrNotFound
		}
		return nil, plans{}, fmt.Errorf("failed to get menu: %w", err)
	}
	if row.OwnerUserID != callerID && !isAdmin {
		return nil, plans{}, ErrNotFound
	}
	p, err := decodePlans(*row)
	if err != nil {
		return nil, plans{}, err
	}
	return row, p, nil
}

func decodePlans(row storage.MenuTemplate) (plans, error) {
	var p plans
	if len(row.Plans) > 0 {
		if err := json.Unmarshal(row.Plans, &p); err != nil {
			return plans{}, fmt.Errorf("failed to decode menu %s: %w", row.ID, err)
		}
	}
	return plansOf(p.template(row.Name)), nil
}

func toDTO(row *storage.MenuTemplate, p plans) *MenuDTO {
	return &MenuDTO{
		ID:            row.ID,
		OwnerUserID:   row.OwnerUserID,
		Name:          row.Name,
		BreakfastPlan: scaleItems(p.BreakfastPlan),
		LunchPlan:     scaleItems(p.LunchPlan),
		DinnerPlan:    scaleItems(p.DinnerPlan),
		SnackPlan:     scaleItems(p.SnackPlan),
		Totals:        nutrient.AggregatePlanMeals(p.template(row.Name)),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func scaleItems(items []nutrient.CatalogItem) []PlanItemDTO {
	out := make([]PlanItemDTO, len(items))
	for i, item := range items {
		out[i] = PlanItemDTO{CatalogItem: item, Scaled: nutrient.ScalePlanItem(item)}
	}
	return out
}
