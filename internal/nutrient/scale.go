package nutrient

import (
	"math"
	"strings"
)

// Originals returns the item's snapshot values, preferring the original*
// fields over the totals.
func Originals(item CatalogItem) Result {
	r := Result{Calories: item.TotalCalories}
	if item.OriginalCalories != nil {
		r.Calories = *item.OriginalCalories
	}
	switch {
	case item.OriginalNutrients != nil:
		r.Nutrients = *item.OriginalNutrients
	case item.TotalNutrients != nil:
		r.Nutrients = *item.TotalNutrients
	}
	return r
}

// Scale converts the item's reference values from original to selected.
// When either amount is not positive the originals are returned unscaled.
// Calories are rounded; nutrients are not.
func Scale(item CatalogItem, selected, original float64) Result {
	base := Originals(item)
	if !(original > 0) || !(selected > 0) {
		return base
	}

	ratio := selected / original
	if IsRecipe(item) {
		n := servings(item)
		if w := perServingWeight(item, original, n); w > 0 {
			ratio = (selected / w) / n
		}
	}

	return Result{
		Calories:  math.Round(base.Calories * ratio),
		Nutrients: base.Nutrients.Times(ratio),
	}
}

// perServingWeight is the weight of one recipe serving: the portion profile,
// else the first option that is not the grams default, else an even split of
// the original amount.
func perServingWeight(item CatalogItem, original, n float64) float64 {
	if p := findPortion(item.ServingOptions); p != nil && p.Amount > 0 {
		return p.Amount
	}
	for _, s := range item.ServingOptions {
		if s.HasProfile(GramsProfileID) || strings.ToLower(s.Name) == recipeGramServingName {
			continue
		}
		if s.Amount > 0 {
			return s.Amount
		}
		break
	}
	return original / n
}

// ScaleAppliedQuantity scales a daily-log entry to its logged quantity.
// Exercise entries report their burnt calories as-is.
func ScaleAppliedQuantity(a AppliedItem) Result {
	if a.IsExercise() {
		return Result{Calories: a.Exercise.CaloriesBurnt}
	}
	ref := a.Reference()
	if ref.OriginalServingAmount <= 0 && a.OriginalServingAmount > 0 {
		ref.OriginalServingAmount = a.OriginalServingAmount
	}
	return Scale(ref, a.Quantity, ResolveOriginalServingAmount(ref))
}

// ScalePlanItem scales a menu-template item to its changedServing value.
// Items without a selection keep their reference values.
func ScalePlanItem(item CatalogItem) Result {
	if item.ChangedServing == nil {
		return Originals(item)
	}
	return Scale(item, item.ChangedServing.Value, ResolveOriginalServingAmount(item))
}

// BurntCalories sums the calories of exercise entries.
func BurntCalories(items []AppliedItem) float64 {
	var total float64
	for _, it := range items {
		if it.Exercise != nil {
			total += it.Exercise.CaloriesBurnt
		}
	}
	return total
}
