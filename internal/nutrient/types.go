// Package nutrient scales catalog nutrition values to requested serving
// amounts and folds them into meal and day totals.
//
// Everything here is pure: no I/O, no shared state, and no errors. Malformed
// or partial data degrades to fallbacks, unscaled passthrough or zeros.
package nutrient

const (
	// GramsProfileID marks the generic weight-based default serving.
	GramsProfileID = 0
	// PortionProfileID marks "one discrete serving" of a recipe.
	PortionProfileID = 1
	// DefaultServingGrams is the universal reference amount when an item
	// carries no usable serving metadata.
	DefaultServingGrams = 100.0

	// recipeGramServingName is skipped when looking for a recipe's
	// per-serving weight. Locale-specific; see DESIGN.md.
	recipeGramServingName = "grame"
)

// DefaultGramUnitNames are serving names treated as the grams/default unit
// when no serving carries GramsProfileID.
var DefaultGramUnitNames = []string{"g", "gram", "grame", "gramm", "ml"}

// ServingOption is a named unit with the weight or volume of one unit.
type ServingOption struct {
	ID        *int64  `json:"id,omitempty"`
	ProfileID *int    `json:"profileId,omitempty"`
	Name      string  `json:"name,omitempty"`
	InnerName string  `json:"innerName,omitempty"`
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit,omitempty"`
}

// HasProfile reports whether the serving carries the given profile id.
func (s ServingOption) HasProfile(id int) bool {
	return s.ProfileID != nil && *s.ProfileID == id
}

// Nutrients holds macro and micro values for a reference quantity.
// Absent fields decode as zero.
type Nutrients struct {
	ProteinsInGrams      float64 `json:"proteinsInGrams"`
	CarbohydratesInGrams float64 `json:"carbohydratesInGrams"`
	FatInGrams           float64 `json:"fatInGrams"`
	Cholesterol          float64 `json:"cholesterol,omitempty"`
	Fibers               float64 `json:"fibers,omitempty"`
	NonSaturatedFat      float64 `json:"nonSaturatedFat,omitempty"`
	SaturatedFat         float64 `json:"saturatedFat,omitempty"`
	Sodium               float64 `json:"sodium,omitempty"`
	Sugar                float64 `json:"sugar,omitempty"`

	// Recipes only: total cooked weight across all servings.
	TotalQuantity      float64 `json:"totalQuantity,omitempty"`
	WeightAfterCooking float64 `json:"weightAfterCooking,omitempty"`
}

// Times returns every scalable field multiplied by ratio. Recipe weights are
// reference metadata and are not carried over.
func (n Nutrients) Times(ratio float64) Nutrients {
	return Nutrients{
		ProteinsInGrams:      n.ProteinsInGrams * ratio,
		CarbohydratesInGrams: n.CarbohydratesInGrams * ratio,
		FatInGrams:           n.FatInGrams * ratio,
		Cholesterol:          n.Cholesterol * ratio,
		Fibers:               n.Fibers * ratio,
		NonSaturatedFat:      n.NonSaturatedFat * ratio,
		SaturatedFat:         n.SaturatedFat * ratio,
		Sodium:               n.Sodium * ratio,
		Sugar:                n.Sugar * ratio,
	}
}

// ChangedServing is the menu builder's selection for a template item.
type ChangedServing struct {
	Value   float64        `json:"value"`
	Serving *ServingOption `json:"serving,omitempty"`
}

// CatalogItem is a food or recipe as the catalog returns it, optionally
// carrying the annotations a menu template persists next to it.
type CatalogItem struct {
	ID               int64           `json:"id,omitempty"`
	Name             string          `json:"name,omitempty"`
	ItemType         string          `json:"itemType,omitempty"`
	Type             string          `json:"type,omitempty"`
	ServingOptions   []ServingOption `json:"servingOptions,omitempty"`
	TotalCalories    float64         `json:"totalCalories"`
	TotalNutrients   *Nutrients      `json:"totalNutrients,omitempty"`
	NumberOfServings float64         `json:"numberOfServings,omitempty"`

	OriginalCalories  *float64   `json:"originalCalories,omitempty"`
	OriginalNutrients *Nutrients `json:"originalNutrients,omitempty"`

	OriginalServingAmount float64         `json:"originalServingAmount,omitempty"`
	OriginalServingID     string          `json:"originalServingId,omitempty"`
	ChangedServing        *ChangedServing `json:"changedServing,omitempty"`
}

// Exercise is a logged activity. Its calories are never scaled.
type Exercise struct {
	Name              string  `json:"name"`
	CaloriesBurnt     float64 `json:"caloriesBurnt"`
	DurationInMinutes float64 `json:"durationInMinutes"`
}

// AppliedItem is an entry in a day's log. The catalog snapshot is either
// wrapped under Food or flattened into the embedded CatalogItem.
type AppliedItem struct {
	CatalogItem
	Food     *CatalogItem `json:"food,omitempty"`
	Exercise *Exercise    `json:"exercise,omitempty"`
	Quantity float64      `json:"quantity"`
	Unit     string       `json:"unit,omitempty"`
}

// Reference returns the catalog data the entry was logged against.
func (a AppliedItem) Reference() CatalogItem {
	if a.Food != nil {
		return *a.Food
	}
	return a.CatalogItem
}

// IsExercise reports whether the entry is an activity rather than a food.
func (a AppliedItem) IsExercise() bool {
	return a.Exercise != nil && a.Food == nil
}

// Result is one item's scaled values.
type Result struct {
	Calories  float64   `json:"calories"`
	Nutrients Nutrients `json:"nutrients"`
}

// Totals are the four headline fields summed over a list of items.
type Totals struct {
	Calories             float64 `json:"calories"`
	ProteinsInGrams      float64 `json:"proteinsInGrams"`
	CarbohydratesInGrams float64 `json:"carbohydratesInGrams"`
	FatInGrams           float64 `json:"fatInGrams"`
}

// Add returns the field-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Calories:             t.Calories + o.Calories,
		ProteinsInGrams:      t.ProteinsInGrams + o.ProteinsInGrams,
		CarbohydratesInGrams: t.CarbohydratesInGrams + o.CarbohydratesInGrams,
		FatInGrams:           t.FatInGrams + o.FatInGrams,
	}
}

// DailyNutrition is the daily log payload.
type DailyNutrition struct {
	Breakfast []AppliedItem `json:"breakfast"`
	Lunch     []AppliedItem `json:"lunch"`
	Dinner    []AppliedItem `json:"dinner"`
	Snack     []AppliedItem `json:"snack"`
	Exercise  []AppliedItem `json:"exercise"`
	Water     []AppliedItem `json:"water"`
}

// MenuTemplate is the menu builder payload.
type MenuTemplate struct {
	Name          string        `json:"name"`
	BreakfastPlan []CatalogItem `json:"breakfastPlan"`
	LunchPlan     []CatalogItem `json:"lunchPlan"`
	DinnerPlan    []CatalogItem `json:"dinnerPlan"`
	SnackPlan     []CatalogItem `json:"snackPlan"`
}

// MealTotals is a grand total with its per-meal breakdown.
type MealTotals struct {
	Grand     Totals `json:"grand"`
	Breakfast Totals `json:"breakfast"`
	Lunch     Totals `json:"lunch"`
	Dinner    Totals `json:"dinner"`
	Snack     Totals `json:"snack"`
}
