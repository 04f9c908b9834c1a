package daylog

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/nutridesk/internal/goals"
	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/google/uuid"
)

// Entry slots.
const (
	SlotBreakfast = "breakfast"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotSnack     = "snack"
	SlotExercise  = "exercise"
	SlotWater     = "water"
)

var mealSlots = []string{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

func isMealSlot(slot string) bool {
	for _, s := range mealSlots {
		if slot == s {
			return true
		}
	}
	return false
}

// EntryDTO is a logged item with its value at the logged quantity.
type EntryDTO struct {
	ID        uuid.UUID            `json:"id"`
	Slot      string               `json:"slot"`
	Item      nutrient.AppliedItem `json:"item"`
	Scaled    nutrient.Result      `json:"scaled"`
	CreatedBy string               `json:"createdBy,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// MealsDTO groups food entries by meal.
type MealsDTO struct {
	Breakfast []EntryDTO `json:"breakfast"`
	Lunch     []EntryDTO `json:"lunch"`
	Dinner    []EntryDTO `json:"dinner"`
	Snack     []EntryDTO `json:"snack"`
}

// Percentages are day totals relative to the user's goals, in percent.
type Percentages struct {
	Calories      float64 `json:"calories"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Water         float64 `json:"water"`
}

// DayResponse is the response for GET /v1/days/{date}.
type DayResponse struct {
	Date           string              `json:"date"`
	UserID         string              `json:"userId"`
	Meals          MealsDTO            `json:"meals"`
	Exercise       []EntryDTO          `json:"exercise"`
	Water          []EntryDTO          `json:"water"`
	Totals         nutrient.MealTotals `json:"totals"`
	BurntCalories  float64             `json:"burntCalories"`
	NetCalories    float64             `json:"netCalories"`
	WaterMl        float64             `json:"waterMl"`
	Goals          goals.GoalsDTO      `json:"goals"`
	GoalsIsDefault bool                `json:"goalsIsDefault"`
	Percentages    Percentages         `json:"percentages"`
}

// CreateEntryRequest is the body of POST /v1/days/{date}/entries.
// Food slots need Food and Quantity, exercise needs Exercise, water needs
// AmountMl.
type CreateEntryRequest struct {
	UserID   string                `json:"userId,omitempty"`
	Slot     string                `json:"slot"`
	Food     *nutrient.CatalogItem `json:"food,omitempty"`
	Exercise *nutrient.Exercise    `json:"exercise,omitempty"`
	Quantity float64               `json:"quantity,omitempty"`
	Unit     string                `json:"unit,omitempty"`
	AmountMl float64               `json:"amountMl,omitempty"`
}

// Validate checks the request and normalizes the slot.
func (r *CreateEntryRequest) Validate() error {
	r.Slot = strings.ToLower(strings.TrimSpace(r.Slot))

	switch {
	case isMealSlot(r.Slot):
		if r.Food == nil {
			return fmt.Errorf("food is required for %s", r.Slot)
		}
		if strings.TrimSpace(r.Food.Name) == "" {
			return fmt.Errorf("food.name is required")
		}
		if r.Quantity <= 0 {
			return fmt.Errorf("quantity must be positive")
		}
	case r.Slot == SlotExercise:
		if r.Exercise == nil || strings.TrimSpace(r.Exercise.Name) == "" {
			return fmt.Errorf("exercise.name is required")
		}
		if r.Exercise.CaloriesBurnt < 0 || r.Exercise.DurationInMinutes < 0 {
			return fmt.Errorf("exercise values must be non-negative")
		}
	case r.Slot == SlotWater:
		if r.AmountMl <= 0 || r.AmountMl > 10000 {
			return fmt.Errorf("amountMl must be between 0 and 10000")
		}
	default:
		return fmt.Errorf("slot must be one of breakfast, lunch, dinner, snack, exercise, water")
	}
	return nil
}

// item builds the stored applied item.
func (r CreateEntryRequest) item() nutrient.AppliedItem {
	switch r.Slot {
	case SlotExercise:
		ex := *r.Exercise
		return nutrient.AppliedItem{Exercise: &ex, Quantity: 1}
	case SlotWater:
		return nutrient.AppliedItem{Quantity: r.AmountMl, Unit: "ml"}
	}
	food := *r.Food
	nutrient.PinOriginalServing(&food)
	return nutrient.AppliedItem{Food: &food, Quantity: r.Quantity, Unit: r.Unit}
}

// JournalDay is one day of a client journal.
type JournalDay struct {
	Date          string          `json:"date"`
	Totals        nutrient.Totals `json:"totals"`
	BurntCalories float64         `json:"burntCalories"`
	WaterMl       float64         `json:"waterMl"`
	Entries       int             `json:"entries"`
}

// JournalResponse is the response for GET /v1/journal.
type JournalResponse struct {
	UserID     string          `json:"userId"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Days       []JournalDay    `json:"days"`
	LoggedDays int             `json:"loggedDays"`
	Average    nutrient.Totals `json:"average"`
}
