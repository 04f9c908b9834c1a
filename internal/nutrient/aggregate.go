package nutrient

// Sum folds results into headline totals.
func Sum(results ...Result) Totals {
	var t Totals
	for _, r := range results {
		t.Calories += r.Calories
		t.ProteinsInGrams += r.Nutrients.ProteinsInGrams
		t.CarbohydratesInGrams += r.Nutrients.CarbohydratesInGrams
		t.FatInGrams += r.Nutrients.FatInGrams
	}
	return t
}

// Aggregate sums the scaled values of daily-log entries. Exercise entries
// are skipped; use BurntCalories for those.
func Aggregate(items []AppliedItem) Totals {
	results := make([]Result, 0, len(items))
	for _, it := range items {
		if it.IsExercise() {
			continue
		}
		results = append(results, ScaleAppliedQuantity(it))
	}
	return Sum(results...)
}

// AggregatePlan sums the scaled values of menu-template items.
func AggregatePlan(items []CatalogItem) Totals {
	results := make([]Result, 0, len(items))
	for _, it := range items {
		results = append(results, ScalePlanItem(it))
	}
	return Sum(results...)
}

// AggregateMeals totals each meal of a day and their sum.
func AggregateMeals(day DailyNutrition) MealTotals {
	return mealTotals(
		Aggregate(day.Breakfast),
		Aggregate(day.Lunch),
		Aggregate(day.Dinner),
		Aggregate(day.Snack),
	)
}

// AggregatePlanMeals totals each slot of a menu template and their sum.
func AggregatePlanMeals(t MenuTemplate) MealTotals {
	return mealTotals(
		AggregatePlan(t.BreakfastPlan),
		AggregatePlan(t.LunchPlan),
		AggregatePlan(t.DinnerPlan),
		AggregatePlan(t.SnackPlan),
	)
}

func mealTotals(breakfast, lunch, dinner, snack Totals) MealTotals {
	return MealTotals{
		Grand:     breakfast.Add(lunch).Add(dinner).Add(snack),
		Breakfast: breakfast,
		Lunch:     lunch,
		Dinner:    dinner,
		Snack:     snack,
	}
}
