package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/fdg312/nutridesk/internal/storage"
)

var (
	ErrNotFound       = errors.New("catalog item not found")
	ErrInvalidKind    = errors.New("type must be food or recipe")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrUnknownServing = errors.New("serving not found for item")
	ErrValidation     = errors.New("validation failed")
)

// Service handles catalog business logic.
type Service struct {
	storage  storage.CatalogStorage
	maxLimit int
}

// NewService creates a new catalog service. maxLimit caps search page size.
func NewService(storage storage.CatalogStorage, maxLimit int) *Service {
	if maxLimit <= 0 {
		maxLimit = 50
	}
	return &Service{storage: storage, maxLimit: maxLimit}
}

// Search returns catalog items matching text, optionally filtered by kind.
func (s *Service) Search(ctx context.Context, text, kind string, limit, offset int) ([]nutrient.CatalogItem, int, int, error) {
	if kind != "" && kind != KindFood && kind != KindRecipe {
		return nil, 0, 0, ErrInvalidKind
	}
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.storage.Search(ctx, storage.CatalogQuery{
		Text:   text,
		Kind:   kind,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to search catalog: %w", err)
	}

	items := make([]nutrient.CatalogItem, 0, len(rows))
	for _, row := range rows {
		item, err := decodeRow(row)
		if err != nil {
			return nil, 0, 0, err
		}
		items = append(items, item)
	}
	return items, total, limit, nil
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id int64) (nutrient.CatalogItem, error) {
	row, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nutrient.CatalogItem{}, ErrNotFound
		}
		return nutrient.CatalogItem{}, fmt.Errorf("failed to get catalog item: %w", err)
	}
	return decodeRow(*row)
}

// Create validates and stores a new item.
func (s *Service) Create(ctx context.Context, createdBy string, item nutrient.CatalogItem) (nutrient.CatalogItem, error) {
	if err := validateItem(&item); err != nil {
		return nutrient.CatalogItem{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return nutrient.CatalogItem{}, fmt.Errorf("failed to encode catalog item: %w", err)
	}

	row := &storage.CatalogItemRow{
		ID:        item.ID,
		Name:      item.Name,
		Kind:      kindOf(item),
		Payload:   payload,
		CreatedBy: createdBy,
	}
	if err := s.storage.Create(ctx, row); err != nil {
		return nutrient.CatalogItem{}, fmt.Errorf("failed to create catalog item: %w", err)
	}

	item.ID = row.ID
	return item, nil
}

// Delete removes an item. Logged entries and menus keep their snapshots.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}
	return nil
}

// Scale previews item id at the requested amount.
func (s *Service) Scale(ctx context.Context, id int64, req ScaleRequest) (*ScaleResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return Preview(item, req)
}

// Preview scales item the way the menu builder shows it.
func Preview(item nutrient.CatalogItem, req ScaleRequest) (*ScaleResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	original, originalID := nutrient.ResolveOriginalServing(item)

	selected := req.Amount
	var changed *nutrient.ChangedServing
	if req.ServingID != "" {
		serving := nutrient.FindServingByIdentifier(item.ServingOptions, req.ServingID)
		if serving == nil {
			return nil, ErrUnknownServing
		}
		selected = req.Amount * serving.Amount
		chosen := *serving
		changed = &nutrient.ChangedServing{Value: selected, Serving: &chosen}
	}

	result := nutrient.Scale(item, selected, original)

	return &ScaleResponse{
		ItemID:                item.ID,
		Calories:              result.Calories,
		Nutrients:             result.Nutrients,
		OriginalServingAmount: original,
		OriginalServingID:     originalID,
		IsRecipe:              nutrient.IsRecipe(item),
		DefaultServing:        nutrient.ResolveDefaultServing(item.ServingOptions),
		ChangedServing:        changed,
	}, nil
}

func decodeRow(row storage.CatalogItemRow) (nutrient.CatalogItem, error) {
	var item nutrient.CatalogItem
	if err := json.Unmarshal(row.Payload, &item); err != nil {
		return nutrient.CatalogItem{}, fmt.Errorf("failed to decode catalog item %d: %w", row.ID, err)
	}
	item.ID = row.ID
	if item.Name == "" {
		item.Name = row.Name
	}
	return item, nil
}
