package catalog

import (
	"fmt"
	"strings"

	"github.com/fdg312/nutridesk/internal/nutrient"
)

const (
	KindFood   = "food"
	KindRecipe = "recipe"
)

// SearchResponse is the response for GET /v1/catalog/search.
type SearchResponse struct {
	Items  []nutrient.CatalogItem `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ScaleRequest is the body of POST /v1/catalog/items/{id}/scale.
// Without ServingID, Amount is in the item's reference unit (grams or ml).
// With it, Amount counts servings of that option.
type ScaleRequest struct {
	Amount    float64 `json:"amount"`
	ServingID string  `json:"servingId,omitempty"`
}

// ScaleResponse previews an item at the requested amount. ChangedServing is
// the annotation a menu template would store for the selection.
type ScaleResponse struct {
	ItemID                int64                    `json:"itemId"`
	Calories              float64                  `json:"calories"`
	Nutrients             nutrient.Nutrients       `json:"nutrients"`
	OriginalServingAmount float64                  `json:"originalServingAmount"`
	OriginalServingID     string                   `json:"originalServingId"`
	IsRecipe              bool                     `json:"isRecipe"`
	DefaultServing        *nutrient.ServingOption  `json:"defaultServing,omitempty"`
	ChangedServing        *nutrient.ChangedServing `json:"changedServing,omitempty"`
}

// validateItem checks a catalog item before it is stored.
func validateItem(item *nutrient.CatalogItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if len(item.Name) < 1 || len(item.Name) > 200 {
		return fmt.Errorf("name must be between 1 and 200 characters")
	}

	if item.TotalCalories < 0 {
		return fmt.Errorf("totalCalories must be non-negative")
	}

	if n := item.TotalNutrients; n != nil {
		for field, v := range map[string]float64{
			"proteinsInGrams":      n.ProteinsInGrams,
			"carbohydratesInGrams": n.CarbohydratesInGrams,
			"fatInGrams":           n.FatInGrams,
			"cholesterol":          n.Cholesterol,
			"fibers":               n.Fibers,
			"nonSaturatedFat":      n.NonSaturatedFat,
			"saturatedFat":         n.SaturatedFat,
			"sodium":               n.Sodium,
			"sugar":                n.Sugar,
			"totalQuantity":        n.TotalQuantity,
			"weightAfterCooking":   n.WeightAfterCooking,
		} {
			if v < 0 {
				return fmt.Errorf("%s must be non-negative", field)
			}
		}
	}

	for i, opt := range item.ServingOptions {
		if opt.Amount < 0 {
			return fmt.Errorf("servingOptions[%d].amount must be non-negative", i)
		}
	}

	if nutrient.IsRecipe(*item) && item.NumberOfServings < 1 {
		return fmt.Errorf("numberOfServings must be at least 1 for recipes")
	}

	// Originals and menu annotations are never part of catalog data.
	item.OriginalCalories = nil
	item.OriginalNutrients = nil
	item.OriginalServingAmount = 0
	item.OriginalServingID = ""
	item.ChangedServing = nil

	return nil
}

func kindOf(item nutrient.CatalogItem) string {
	if nutrient.IsRecipe(item) {
		return KindRecipe
	}
	return KindFood
}
