package menus

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/google/uuid"
)

// PlanItemDTO is a template item with its values at the selected serving.
type PlanItemDTO struct {
	nutrient.CatalogItem
	Scaled nutrient.Result `json:"scaled"`
}

// MenuDTO is a full menu template.
type MenuDTO struct {
	ID            uuid.UUID           `json:"id"`
	OwnerUserID   string              `json:"ownerUserId"`
	Name          string              `json:"name"`
	BreakfastPlan []PlanItemDTO       `json:"breakfastPlan"`
	LunchPlan     []PlanItemDTO       `json:"lunchPlan"`
	DinnerPlan    []PlanItemDTO       `json:"dinnerPlan"`
	SnackPlan     []PlanItemDTO       `json:"snackPlan"`
	Totals        nutrient.MealTotals `json:"totals"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// MenuSummaryDTO is a list entry.
type MenuSummaryDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	ItemCount int             `json:"itemCount"`
	Totals    nutrient.Totals `json:"totals"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ListMenusResponse is the response for GET /v1/menus.
type ListMenusResponse struct {
	Menus []MenuSummaryDTO `json:"menus"`
}

// plans is the stored JSON of a template's four slots.
type plans struct {
	BreakfastPlan []nutrient.CatalogItem `json:"breakfastPlan"`
	LunchPlan     []nutrient.CatalogItem `json:"lunchPlan"`
	DinnerPlan    []nutrient.CatalogItem `json:"dinnerPlan"`
	SnackPlan     []nutrient.CatalogItem `json:"snackPlan"`
}

func plansOf(t nutrient.MenuTemplate) plans {
	return plans{
		BreakfastPlan: orEmpty(t.BreakfastPlan),
		LunchPlan:     orEmpty(t.LunchPlan),
		DinnerPlan:    orEmpty(t.DinnerPlan),
		SnackPlan:     orEmpty(t.SnackPlan),
	}
}

func (p plans) template(name string) nutrient.MenuTemplate {
	return nutrient.MenuTemplate{
		Name:          name,
		BreakfastPlan: p.BreakfastPlan,
		LunchPlan:     p.LunchPlan,
		DinnerPlan:    p.DinnerPlan,
		SnackPlan:     p.SnackPlan,
	}
}

type slot struct {
	name  string
	items []nutrient.CatalogItem
}

func (p plans) slots() []slot {
	return []slot{
		{"breakfastPlan", p.BreakfastPlan},
		{"lunchPlan", p.LunchPlan},
		{"dinnerPlan", p.DinnerPlan},
		{"snackPlan", p.SnackPlan},
	}
}

func orEmpty(items []nutrient.CatalogItem) []nutrient.CatalogItem {
	if items == nil {
		return []nutrient.CatalogItem{}
	}
	return items
}

// validateTemplate checks names, slot sizes and serving selections.
func validateTemplate(t *nutrient.MenuTemplate, maxPerSlot int) error {
	t.Name = strings.TrimSpace(t.Name)
	if len(t.Name) < 1 || len(t.Name) > 120 {
		return fmt.Errorf("name must be between 1 and 120 characters")
	}

	for _, sl := range plansOf(*t).slots() {
		if len(sl.items) > maxPerSlot {
			return fmt.Errorf("%s has more than %d items", sl.name, maxPerSlot)
		}
		for i, item := range sl.items {
			if err := validateItem(item); err != nil {
				return fmt.Errorf("%s[%d]: %w", sl.name, i, err)
			}
		}
	}
	return nil
}

func validateItem(item nutrient.CatalogItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("name is required")
	}
	cs := item.ChangedServing
	if cs == nil {
		return nil
	}
	if cs.Value <= 0 {
		return fmt.Errorf("changedServing.value must be positive")
	}
	if cs.Serving != nil {
		id := nutrient.ServingIdentifier(*cs.Serving)
		if nutrient.FindServingByIdentifier(item.ServingOptions, id) == nil {
			return fmt.Errorf("changedServing.serving %q is not a serving of %s", id, item.Name)
		}
	}
	return nil
}
